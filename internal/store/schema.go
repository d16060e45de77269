package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

// Timestamps (created_at, last_accessed) are unix milliseconds; calendar
// dates are TEXT in YYYY-MM-DD form. Both statements sets are valid SQLite
// and PostgreSQL apart from the integer widths.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS study_sessions (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		session_type     TEXT NOT NULL CHECK (session_type IN ('lesson', 'test', 'ai_tutor', 'materials')),
		subject          TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		score            INTEGER,
		session_date     TEXT NOT NULL,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_study_sessions_user_created
		ON study_sessions (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_progress_stats (
		user_id                  TEXT PRIMARY KEY,
		study_streak_days        INTEGER NOT NULL DEFAULT 0,
		total_study_time_minutes INTEGER NOT NULL DEFAULT 0,
		weekly_study_time        INTEGER NOT NULL DEFAULT 0,
		monthly_study_time       INTEGER NOT NULL DEFAULT 0,
		completed_lessons        INTEGER NOT NULL DEFAULT 0,
		total_tests_taken        INTEGER NOT NULL DEFAULT 0,
		average_test_score       INTEGER NOT NULL DEFAULT 0,
		ai_sessions_count        INTEGER NOT NULL DEFAULT 0,
		last_study_date          TEXT,
		version                  BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS subject_progress (
		user_id             TEXT NOT NULL,
		subject_name        TEXT NOT NULL,
		progress_percentage INTEGER NOT NULL DEFAULT 0,
		completed_topics    INTEGER NOT NULL DEFAULT 0,
		total_topics        INTEGER NOT NULL DEFAULT 15,
		last_accessed       BIGINT NOT NULL,
		version             BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, subject_name)
	)`,
}

// Migrate creates any missing tables and refreshes the table catalogue.
func (s *SQL) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("migrate", "", err)
	}
	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return wrap("migrate", "", fmt.Errorf("migration %d: %w", i, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return wrap("migrate", "", err)
	}
	return s.refreshTables(ctx)
}

// MissingTables lists the progress tables not present in the database.
func (s *SQL) MissingTables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var missing []string
	for _, t := range []string{TableStudySessions, TableUserProgressStats, TableSubjectProgress} {
		if !s.tables[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case "sqlite", "sqlite3", "":
		return dialect.SQLite, nil
	case "postgres", "pgx":
		return dialect.Postgres, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}
