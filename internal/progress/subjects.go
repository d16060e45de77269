package progress

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/studypulse/internal/store"
)

// Tracker owns the per-subject completion rows.
type Tracker struct {
	env *env
}

func cleanSubjects(subjects []string) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Initialize writes a zero-progress row for each subject, resetting any
// existing progress for those subjects.
func (t *Tracker) Initialize(ctx context.Context, userID string, subjects []string, grade string) error {
	if userID == "" {
		return ErrMissingUser
	}
	now := t.env.clock()
	for _, s := range cleanSubjects(subjects) {
		row := zeroSubjectRow(userID, s, t.env.curriculum.TopicCount(s, grade), now)
		err := t.env.gw.Upsert(ctx, store.TableSubjectProgress, row, "user_id", "subject_name")
		if err != nil {
			return t.env.swallow("initialize subjects", userID, fmt.Errorf("initialize %s: %w", s, err))
		}
	}
	return nil
}

func (t *Tracker) load(ctx context.Context, userID, subject string) (SubjectProgress, bool, error) {
	var rows []subjectRow
	err := t.env.gw.Select(ctx, store.TableSubjectProgress,
		store.Where("user_id", userID).Eq("subject_name", subject).Limit(1), &rows)
	if err != nil || len(rows) == 0 {
		return SubjectProgress{}, false, err
	}
	return rows[0].subject(), true, nil
}

// Increment records one completed topic for subject. A subject the user
// has no row for is ignored. The completed count is unbounded while the
// percentage is clamped at 100.
func (t *Tracker) Increment(ctx context.Context, userID, subject string) error {
	return t.env.swallow("increment subject", userID, t.increment(ctx, userID, subject))
}

func (t *Tracker) increment(ctx context.Context, userID, subject string) error {
	for range t.env.attempts {
		cur, found, err := t.load(ctx, userID, subject)
		if err != nil {
			return fmt.Errorf("load subject %s: %w", subject, err)
		}
		if !found {
			return nil
		}

		completed := cur.CompletedTopics + 1
		n, err := t.env.gw.Update(ctx, store.TableSubjectProgress,
			store.Where("user_id", userID).Eq("subject_name", subject).Eq("version", cur.Version),
			store.Row{
				"completed_topics":    completed,
				"progress_percentage": Percentage(completed, cur.TotalTopics),
				"last_accessed":       t.env.clock().UnixMilli(),
				"version":             cur.Version + 1,
			})
		if err != nil {
			return fmt.Errorf("write subject %s: %w", subject, err)
		}
		if n > 0 {
			return nil
		}
	}
	return &store.Error{
		Kind:  store.KindConflict,
		Op:    "update",
		Table: store.TableSubjectProgress,
		Err:   fmt.Errorf("subject %s for %s changed concurrently %d times", subject, userID, t.env.attempts),
	}
}

// ReplaceCurriculum makes newSubjects the user's subject set: rows for
// dropped subjects are deleted, new subjects start at zero progress and
// retained subjects keep their progress.
func (t *Tracker) ReplaceCurriculum(ctx context.Context, userID string, newSubjects []string, grade string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return t.env.swallow("replace curriculum", userID, t.replace(ctx, userID, cleanSubjects(newSubjects), grade))
}

func (t *Tracker) replace(ctx context.Context, userID string, subjects []string, grade string) error {
	_, err := t.env.gw.Delete(ctx, store.TableSubjectProgress,
		store.Where("user_id", userID).NotIn("subject_name", store.Strings(subjects)...))
	if err != nil {
		return fmt.Errorf("delete dropped subjects: %w", err)
	}

	var rows []subjectRow
	if err := t.env.gw.Select(ctx, store.TableSubjectProgress, store.Where("user_id", userID), &rows); err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	existing := make(map[string]bool, len(rows))
	for _, r := range rows {
		existing[r.SubjectName] = true
	}

	now := t.env.clock()
	for _, s := range subjects {
		if existing[s] {
			continue
		}
		row := zeroSubjectRow(userID, s, t.env.curriculum.TopicCount(s, grade), now)
		if err := t.env.gw.Insert(ctx, store.TableSubjectProgress, row); err != nil {
			return fmt.Errorf("add subject %s: %w", s, err)
		}
	}
	return nil
}

// List reads the user's subject rows ordered by name.
func (t *Tracker) List(ctx context.Context, userID string) Outcome[[]SubjectProgress] {
	ctx, cancel := t.env.readCtx(ctx)
	defer cancel()

	subjects, err := t.list(ctx, userID)
	if err != nil {
		return degraded(t.env, "list subjects", userID, []SubjectProgress{}, err)
	}
	return Ok(subjects)
}

func (t *Tracker) list(ctx context.Context, userID string) ([]SubjectProgress, error) {
	var rows []subjectRow
	err := t.env.gw.Select(ctx, store.TableSubjectProgress,
		store.Where("user_id", userID).OrderBy("subject_name", false), &rows)
	if err != nil {
		return nil, err
	}
	out := make([]SubjectProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.subject())
	}
	return out, nil
}
