package progress

import (
	"errors"
	"fmt"
	"time"
)

// SessionType is the kind of study activity a session records.
type SessionType string

const (
	SessionLesson    SessionType = "lesson"
	SessionTest      SessionType = "test"
	SessionAITutor   SessionType = "ai_tutor"
	SessionMaterials SessionType = "materials"
)

// SessionTypes lists every known session type.
var SessionTypes = []SessionType{SessionLesson, SessionTest, SessionAITutor, SessionMaterials}

// ParseSessionType validates s as a session type.
func ParseSessionType(s string) (SessionType, error) {
	for _, t := range SessionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSessionType, s)
}

// Validation errors returned by the recorder.
var (
	ErrUnknownSessionType = errors.New("unknown session type")
	ErrInvalidDuration    = errors.New("duration must be a positive number of minutes")
	ErrScoreRequired      = errors.New("a test session requires a score")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and 100")
	ErrScoreNotAllowed    = errors.New("only test sessions carry a score")
	ErrMissingUser        = errors.New("user id is required")
	ErrMissingSubject     = errors.New("subject is required")

	// ErrStatsMissing means the aggregate row was not initialized before
	// an update.
	ErrStatsMissing = errors.New("progress stats not initialized")
)

// StudySession is an immutable record of one study activity.
type StudySession struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Type            SessionType `json:"session_type"`
	Subject         string      `json:"subject"`
	DurationMinutes int         `json:"duration_minutes"`
	Score           *int        `json:"score,omitempty"`
	SessionDate     Date        `json:"session_date"`
	CreatedAt       time.Time   `json:"created_at"`
}

// UserProgressStats is the per-user aggregate row.
type UserProgressStats struct {
	UserID                string `json:"user_id"`
	StudyStreakDays       int    `json:"study_streak_days"`
	TotalStudyTimeMinutes int    `json:"total_study_time_minutes"`
	WeeklyStudyTime       int    `json:"weekly_study_time"`
	MonthlyStudyTime      int    `json:"monthly_study_time"`
	CompletedLessons      int    `json:"completed_lessons"`
	TotalTestsTaken       int    `json:"total_tests_taken"`
	AverageTestScore      int    `json:"average_test_score"`
	AISessionsCount       int    `json:"ai_sessions_count"`
	LastStudyDate         *Date  `json:"last_study_date"`
	Version               int64  `json:"-"`
}

// SubjectProgress is the per-(user, subject) completion row.
type SubjectProgress struct {
	UserID             string    `json:"user_id"`
	SubjectName        string    `json:"subject_name"`
	ProgressPercentage int       `json:"progress_percentage"`
	CompletedTopics    int       `json:"completed_topics"`
	TotalTopics        int       `json:"total_topics"`
	LastAccessed       time.Time `json:"last_accessed"`
	Version            int64     `json:"-"`
}

// Percentage returns round(completed/total*100) clamped to [0, 100].
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := roundDiv(float64(completed)*100, float64(total))
	return min(max(p, 0), 100)
}
