package progress

import (
	"database/sql"
	"math"
	"time"

	"github.com/abhisek/studypulse/internal/store"
)

// Row shapes as stored by the gateway. Every column of the table is listed
// because selects fetch whole rows.

type sessionRow struct {
	ID              string        `db:"id"`
	UserID          string        `db:"user_id"`
	SessionType     string        `db:"session_type"`
	Subject         string        `db:"subject"`
	DurationMinutes int           `db:"duration_minutes"`
	Score           sql.NullInt64 `db:"score"`
	SessionDate     string        `db:"session_date"`
	CreatedAt       int64         `db:"created_at"`
}

func (r sessionRow) session() StudySession {
	s := StudySession{
		ID:              r.ID,
		UserID:          r.UserID,
		Type:            SessionType(r.SessionType),
		Subject:         r.Subject,
		DurationMinutes: r.DurationMinutes,
		CreatedAt:       time.UnixMilli(r.CreatedAt),
	}
	if r.Score.Valid {
		v := int(r.Score.Int64)
		s.Score = &v
	}
	if d, err := ParseDate(r.SessionDate); err == nil {
		s.SessionDate = d
	}
	return s
}

func sessionToRow(s StudySession) store.Row {
	row := store.Row{
		"id":               s.ID,
		"user_id":          s.UserID,
		"session_type":     string(s.Type),
		"subject":          s.Subject,
		"duration_minutes": s.DurationMinutes,
		"score":            nil,
		"session_date":     s.SessionDate.String(),
		"created_at":       s.CreatedAt.UnixMilli(),
	}
	if s.Score != nil {
		row["score"] = *s.Score
	}
	return row
}

type statsRow struct {
	UserID                string         `db:"user_id"`
	StudyStreakDays       int            `db:"study_streak_days"`
	TotalStudyTimeMinutes int            `db:"total_study_time_minutes"`
	WeeklyStudyTime       int            `db:"weekly_study_time"`
	MonthlyStudyTime      int            `db:"monthly_study_time"`
	CompletedLessons      int            `db:"completed_lessons"`
	TotalTestsTaken       int            `db:"total_tests_taken"`
	AverageTestScore      int            `db:"average_test_score"`
	AISessionsCount       int            `db:"ai_sessions_count"`
	LastStudyDate         sql.NullString `db:"last_study_date"`
	Version               int64          `db:"version"`
}

func (r statsRow) stats() UserProgressStats {
	s := UserProgressStats{
		UserID:                r.UserID,
		StudyStreakDays:       r.StudyStreakDays,
		TotalStudyTimeMinutes: r.TotalStudyTimeMinutes,
		WeeklyStudyTime:       r.WeeklyStudyTime,
		MonthlyStudyTime:      r.MonthlyStudyTime,
		CompletedLessons:      r.CompletedLessons,
		TotalTestsTaken:       r.TotalTestsTaken,
		AverageTestScore:      r.AverageTestScore,
		AISessionsCount:       r.AISessionsCount,
		Version:               r.Version,
	}
	if r.LastStudyDate.Valid {
		if d, err := ParseDate(r.LastStudyDate.String); err == nil {
			s.LastStudyDate = &d
		}
	}
	return s
}

// statsPatch holds every mutable column; user_id and version are handled
// by the caller.
func statsPatch(s UserProgressStats) store.Row {
	row := store.Row{
		"study_streak_days":        s.StudyStreakDays,
		"total_study_time_minutes": s.TotalStudyTimeMinutes,
		"weekly_study_time":        s.WeeklyStudyTime,
		"monthly_study_time":       s.MonthlyStudyTime,
		"completed_lessons":        s.CompletedLessons,
		"total_tests_taken":        s.TotalTestsTaken,
		"average_test_score":       s.AverageTestScore,
		"ai_sessions_count":        s.AISessionsCount,
		"last_study_date":          nil,
	}
	if s.LastStudyDate != nil {
		row["last_study_date"] = s.LastStudyDate.String()
	}
	return row
}

type subjectRow struct {
	UserID             string `db:"user_id"`
	SubjectName        string `db:"subject_name"`
	ProgressPercentage int    `db:"progress_percentage"`
	CompletedTopics    int    `db:"completed_topics"`
	TotalTopics        int    `db:"total_topics"`
	LastAccessed       int64  `db:"last_accessed"`
	Version            int64  `db:"version"`
}

func (r subjectRow) subject() SubjectProgress {
	return SubjectProgress{
		UserID:             r.UserID,
		SubjectName:        r.SubjectName,
		ProgressPercentage: r.ProgressPercentage,
		CompletedTopics:    r.CompletedTopics,
		TotalTopics:        r.TotalTopics,
		LastAccessed:       time.UnixMilli(r.LastAccessed),
		Version:            r.Version,
	}
}

func zeroSubjectRow(userID, subject string, totalTopics int, now time.Time) store.Row {
	return store.Row{
		"user_id":             userID,
		"subject_name":        subject,
		"progress_percentage": 0,
		"completed_topics":    0,
		"total_topics":        totalTopics,
		"last_accessed":       now.UnixMilli(),
		"version":             0,
	}
}

// roundDiv returns a/b rounded half away from zero.
func roundDiv(a, b float64) int {
	return int(math.Round(a / b))
}
