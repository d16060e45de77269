package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/store"
)

// Recorder validates and persists study sessions and drives the
// aggregate updates that follow them.
type Recorder struct {
	env     *env
	agg     *Aggregator
	tracker *Tracker
	cache   *StatsCache
}

// Validate checks a session before it is recorded. Test sessions need a
// score in [0, 100]; other types must not carry one.
func Validate(userID string, t SessionType, subject string, durationMinutes int, score *int) error {
	if userID == "" {
		return ErrMissingUser
	}
	if _, err := ParseSessionType(string(t)); err != nil {
		return err
	}
	if strings.TrimSpace(subject) == "" {
		return ErrMissingSubject
	}
	if durationMinutes <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, durationMinutes)
	}
	switch {
	case t == SessionTest && score == nil:
		return ErrScoreRequired
	case t != SessionTest && score != nil:
		return ErrScoreNotAllowed
	case score != nil && (*score < 0 || *score > 100):
		return fmt.Errorf("%w: got %d", ErrScoreOutOfRange, *score)
	}
	return nil
}

// Record appends one study session and folds it into the user's
// aggregates. When the store is unreachable or not configured the failure
// is logged and Record returns nil. Identical calls record two sessions.
func (r *Recorder) Record(ctx context.Context, userID string, t SessionType, subject string, durationMinutes int, score *int) error {
	_, err := r.Save(ctx, userID, t, subject, durationMinutes, score)
	return err
}

// Save is Record that also reports whether the session reached the store.
// stored is false with a nil error when the failure was swallowed.
func (r *Recorder) Save(ctx context.Context, userID string, t SessionType, subject string, durationMinutes int, score *int) (stored bool, err error) {
	if err := Validate(userID, t, subject, durationMinutes, score); err != nil {
		return false, err
	}
	subject = strings.TrimSpace(subject)

	err = r.record(ctx, userID, t, subject, durationMinutes, score)
	if r.cache != nil {
		r.cache.Invalidate(userID)
	}
	if err == nil {
		return true, nil
	}
	return false, r.env.swallow("record session", userID, err)
}

func (r *Recorder) record(ctx context.Context, userID string, t SessionType, subject string, durationMinutes int, score *int) error {
	if _, err := r.agg.Ensure(ctx, userID); err != nil {
		return err
	}

	now := r.env.clock()
	session := StudySession{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            t,
		Subject:         subject,
		DurationMinutes: durationMinutes,
		Score:           score,
		SessionDate:     DateOf(now),
		CreatedAt:       now,
	}
	if err := r.env.gw.Insert(ctx, store.TableStudySessions, sessionToRow(session)); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err := r.agg.Update(ctx, userID, t, durationMinutes, score); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	if t == SessionLesson {
		if err := r.tracker.Increment(ctx, userID, subject); err != nil {
			return err
		}
	}

	r.env.log.Debug("session recorded",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("type", string(t)),
		zap.String("subject", subject),
		zap.Int("minutes", durationMinutes))
	return nil
}
