package progress

import (
	"context"
	"fmt"

	"github.com/abhisek/studypulse/internal/store"
)

// Aggregator owns the per-user UserProgressStats row.
type Aggregator struct {
	env   *env
	cache *StatsCache
}

// ApplySession folds one session into stats as of today and returns the
// updated copy. Version is left unchanged.
func ApplySession(stats UserProgressStats, t SessionType, durationMinutes int, score *int, today Date) UserProgressStats {
	next := stats
	next.StudyStreakDays = NextStreak(stats.StudyStreakDays, stats.LastStudyDate, today)

	next.TotalStudyTimeMinutes += durationMinutes
	next.WeeklyStudyTime += durationMinutes
	next.MonthlyStudyTime += durationMinutes

	switch t {
	case SessionLesson:
		next.CompletedLessons++
	case SessionTest:
		if score != nil {
			// Running mean from the stored, already rounded, average.
			n := stats.TotalTestsTaken + 1
			next.AverageTestScore = roundDiv(float64(stats.AverageTestScore*stats.TotalTestsTaken+*score), float64(n))
			next.TotalTestsTaken = n
		}
	case SessionAITutor:
		next.AISessionsCount++
	case SessionMaterials:
		// No counter tracks materials access.
	}

	if stats.LastStudyDate == nil || stats.LastStudyDate.Before(today) {
		d := today
		next.LastStudyDate = &d
	}
	return next
}

func (a *Aggregator) load(ctx context.Context, userID string) (UserProgressStats, bool, error) {
	var rows []statsRow
	err := a.env.gw.Select(ctx, store.TableUserProgressStats,
		store.Where("user_id", userID).Limit(1), &rows)
	if err != nil {
		return UserProgressStats{}, false, err
	}
	if len(rows) == 0 {
		return UserProgressStats{}, false, nil
	}
	return rows[0].stats(), true, nil
}

// Ensure returns the user's stats, creating a zero-valued row first if
// none exists.
func (a *Aggregator) Ensure(ctx context.Context, userID string) (UserProgressStats, error) {
	stats, found, err := a.load(ctx, userID)
	if err != nil {
		return UserProgressStats{}, fmt.Errorf("load stats: %w", err)
	}
	if found {
		return stats, nil
	}

	zero := UserProgressStats{UserID: userID}
	row := statsPatch(zero)
	row["user_id"] = userID
	row["version"] = int64(0)
	insErr := a.env.gw.Insert(ctx, store.TableUserProgressStats, row)
	if insErr == nil {
		return zero, nil
	}

	// Another writer may have created the row first.
	stats, found, err = a.load(ctx, userID)
	if err == nil && found {
		return stats, nil
	}
	return UserProgressStats{}, fmt.Errorf("initialize stats: %w", insErr)
}

// Update folds one recorded session into the user's aggregate row. The
// write is a version compare-and-swap; on a lost race the whole
// read-modify-write is redone on a fresh read.
func (a *Aggregator) Update(ctx context.Context, userID string, t SessionType, durationMinutes int, score *int) error {
	today := a.env.today()
	for range a.env.attempts {
		cur, found, err := a.load(ctx, userID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		if !found {
			return ErrStatsMissing
		}

		next := ApplySession(cur, t, durationMinutes, score, today)
		patch := statsPatch(next)
		patch["version"] = cur.Version + 1

		n, err := a.env.gw.Update(ctx, store.TableUserProgressStats,
			store.Where("user_id", userID).Eq("version", cur.Version), patch)
		if err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
		if n > 0 {
			return nil
		}
	}
	return &store.Error{
		Kind:  store.KindConflict,
		Op:    "update",
		Table: store.TableUserProgressStats,
		Err:   fmt.Errorf("stats for %s changed concurrently %d times", userID, a.env.attempts),
	}
}

// Stats reads the user's aggregate. A user with no row yet gets zero
// values; a failed read degrades to zero values.
func (a *Aggregator) Stats(ctx context.Context, userID string) Outcome[UserProgressStats] {
	ctx, cancel := a.env.readCtx(ctx)
	defer cancel()

	stats, found, err := a.load(ctx, userID)
	if err != nil {
		return degraded(a.env, "stats", userID, UserProgressStats{UserID: userID}, err)
	}
	if !found {
		return Ok(UserProgressStats{UserID: userID})
	}
	return Ok(stats)
}

// Streak reads the user's streak as of today.
func (a *Aggregator) Streak(ctx context.Context, userID string) Outcome[StreakReport] {
	out := a.Stats(ctx, userID)
	report := BuildStreakReport(out.Value, a.env.today())
	return Outcome[StreakReport]{Value: report, Degraded: out.Degraded, Reason: out.Reason, Kind: out.Kind}
}

// ResetPeriod zeroes the weekly or monthly running sum for every user.
// Each row is reset with the same version compare-and-swap as Update so a
// concurrent session is never folded into a stale sum. Cached stats are
// dropped even when the reset stops part way.
func (a *Aggregator) ResetPeriod(ctx context.Context, column string) (int, error) {
	switch column {
	case ColumnWeeklyStudyTime, ColumnMonthlyStudyTime:
	default:
		return 0, fmt.Errorf("reset: unknown period column %q", column)
	}
	if a.cache != nil {
		defer a.cache.Clear()
	}

	var rows []statsRow
	if err := a.env.gw.Select(ctx, store.TableUserProgressStats, store.Filter{}, &rows); err != nil {
		return 0, fmt.Errorf("reset %s: %w", column, err)
	}

	reset := 0
	for _, r := range rows {
		version := r.Version
		done := false
		for range a.env.attempts {
			n, err := a.env.gw.Update(ctx, store.TableUserProgressStats,
				store.Where("user_id", r.UserID).Eq("version", version),
				store.Row{column: 0, "version": version + 1})
			if err != nil {
				return reset, fmt.Errorf("reset %s for %s: %w", column, r.UserID, err)
			}
			if n > 0 {
				done = true
				break
			}
			cur, found, err := a.load(ctx, r.UserID)
			if err != nil {
				return reset, fmt.Errorf("reset %s for %s: %w", column, r.UserID, err)
			}
			if !found {
				break
			}
			version = cur.Version
		}
		if done {
			reset++
		}
	}
	return reset, nil
}

// Period columns accepted by ResetPeriod.
const (
	ColumnWeeklyStudyTime  = "weekly_study_time"
	ColumnMonthlyStudyTime = "monthly_study_time"
)
