package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQL {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

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

func insertSession(t *testing.T, s *SQL, id, user, subject string, minutes int, createdAt int64) {
	t.Helper()
	err := s.Insert(context.Background(), TableStudySessions, Row{
		"id":               id,
		"user_id":          user,
		"session_type":     "lesson",
		"subject":          subject,
		"duration_minutes": minutes,
		"score":            nil,
		"session_date":     "2024-01-01",
		"created_at":       createdAt,
	})
	require.NoError(t, err)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	assert.Empty(t, s.MissingTables())
}

func TestSchemaMissingBeforeMigrate(t *testing.T) {
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer s.Close()

	assert.ElementsMatch(t,
		[]string{TableStudySessions, TableUserProgressStats, TableSubjectProgress},
		s.MissingTables())

	var rows []sessionRow
	err = s.Select(context.Background(), TableStudySessions, Filter{}, &rows)
	require.Error(t, err)
	assert.Equal(t, KindSchemaMissing, KindOf(err))

	err = s.Insert(context.Background(), "nope", Row{"a": 1})
	assert.Equal(t, KindSchemaMissing, KindOf(err))
}

func TestSchemaCreatedByAnotherConnection(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	server, err := Open(ctx, "sqlite", path)
	require.NoError(t, err)
	defer server.Close()
	require.Len(t, server.MissingTables(), 3)

	migrator, err := Open(ctx, "sqlite", path)
	require.NoError(t, err)
	require.NoError(t, migrator.Migrate(ctx))
	require.NoError(t, migrator.Close())

	var rows []sessionRow
	require.NoError(t, server.Select(ctx, TableStudySessions, Filter{}, &rows))
	assert.Empty(t, rows)
	assert.Empty(t, server.MissingTables())

	err = server.Insert(ctx, "nope", Row{"a": 1})
	assert.Equal(t, KindSchemaMissing, KindOf(err))
}

func TestSelectFilterOrderLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insertSession(t, s, "a", "u1", "Math", 10, 100)
	insertSession(t, s, "b", "u1", "Physics", 20, 200)
	insertSession(t, s, "c", "u1", "Math", 30, 300)
	insertSession(t, s, "d", "u2", "Math", 40, 400)

	var rows []sessionRow
	err := s.Select(ctx, TableStudySessions,
		Where("user_id", "u1").GTE("created_at", int64(150)).OrderBy("created_at", true), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)
	assert.False(t, rows[0].Score.Valid)

	rows = nil
	err = s.Select(ctx, TableStudySessions,
		Where("user_id", "u1").OrderBy("created_at", false).Limit(1), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].ID)

	rows = nil
	err = s.Select(ctx, TableStudySessions,
		Filter{}.In("subject", "Physics").LTE("created_at", int64(250)), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)
}

func TestEmptyInMatchesNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertSession(t, s, "a", "u1", "Math", 10, 100)

	var rows []sessionRow
	require.NoError(t, s.Select(ctx, TableStudySessions, Filter{}.In("subject"), &rows))
	assert.Empty(t, rows)

	n, err := s.Delete(ctx, TableStudySessions, Where("user_id", "u1").In("subject"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEmptyNotInExcludesNothing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertSession(t, s, "a", "u1", "Math", 10, 100)
	insertSession(t, s, "b", "u1", "Art", 10, 100)

	n, err := s.Delete(ctx, TableStudySessions, Where("user_id", "u1").NotIn("subject"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUpdateReturnsAffectedRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, TableUserProgressStats, Row{"user_id": "u1", "version": 0}))

	n, err := s.Update(ctx, TableUserProgressStats,
		Where("user_id", "u1").Eq("version", 0),
		Row{"study_streak_days": 3, "version": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Stale version matches nothing.
	n, err = s.Update(ctx, TableUserProgressStats,
		Where("user_id", "u1").Eq("version", 0),
		Row{"study_streak_days": 9, "version": 1})
	require.NoError(t, err)
	assert.Zero(t, n)

	var streak int
	require.NoError(t, s.DB().Get(&streak, "SELECT study_streak_days FROM user_progress_stats WHERE user_id = ?", "u1"))
	assert.Equal(t, 3, streak)
}

func TestUpsertOverwritesOnConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	row := Row{
		"user_id":             "u1",
		"subject_name":        "Math",
		"completed_topics":    4,
		"progress_percentage": 27,
		"total_topics":        15,
		"last_accessed":       int64(1),
	}
	require.NoError(t, s.Upsert(ctx, TableSubjectProgress, row, "user_id", "subject_name"))

	row["completed_topics"] = 0
	row["progress_percentage"] = 0
	require.NoError(t, s.Upsert(ctx, TableSubjectProgress, row, "user_id", "subject_name"))

	var count, completed int
	require.NoError(t, s.DB().Get(&count, "SELECT COUNT(*) FROM subject_progress"))
	require.NoError(t, s.DB().Get(&completed, "SELECT completed_topics FROM subject_progress"))
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, completed)
}

func TestInsertDuplicateIsNotDegradable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	insertSession(t, s, "a", "u1", "Math", 10, 100)

	err := s.Insert(ctx, TableStudySessions, Row{
		"id": "a", "user_id": "u1", "session_type": "lesson", "subject": "Math",
		"duration_minutes": 10, "session_date": "2024-01-01", "created_at": int64(1),
	})
	require.Error(t, err)
	assert.False(t, IsDegradable(err))
}

func TestTimeoutIsConnectivity(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	var rows []sessionRow
	err := s.Select(ctx, TableStudySessions, Filter{}.Timeout(time.Millisecond), &rows)
	require.Error(t, err)
	assert.Equal(t, KindConnectivity, KindOf(err))
}

func TestUnconfigured(t *testing.T) {
	g := Unconfigured()
	ctx := context.Background()

	var rows []sessionRow
	errs := []error{
		g.Select(ctx, TableStudySessions, Filter{}, &rows),
		g.Insert(ctx, TableStudySessions, Row{}),
		g.Upsert(ctx, TableSubjectProgress, Row{}, "user_id"),
	}
	_, err := g.Update(ctx, TableUserProgressStats, Filter{}, Row{"a": 1})
	errs = append(errs, err)
	_, err = g.Delete(ctx, TableSubjectProgress, Filter{})
	errs = append(errs, err)

	for _, err := range errs {
		assert.Equal(t, KindNotConfigured, KindOf(err))
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.True(t, IsDegradable(err))
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindConnectivity},
		{"bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), KindConnectivity},
		{"conn done", sql.ErrConnDone, KindConnectivity},
		{"no rows", sql.ErrNoRows, KindNotFound},
		{"pq undefined table", &pq.Error{Code: "42P01"}, KindSchemaMissing},
		{"pq connection failure", &pq.Error{Code: "08006"}, KindConnectivity},
		{"pq admin shutdown", &pq.Error{Code: "57P01"}, KindConnectivity},
		{"pq unique violation", &pq.Error{Code: "23505"}, KindUnknown},
		{"net error", timeoutErr{}, KindConnectivity},
		{"plain", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.want {
				t.Errorf("classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := &Error{Kind: KindConflict, Op: "update", Table: TableSubjectProgress}
	err := wrap("select", "x", fmt.Errorf("ctx: %w", inner))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestDialectFor(t *testing.T) {
	for _, drv := range []string{"sqlite", "postgres"} {
		_, err := dialectFor(drv)
		assert.NoError(t, err, drv)
	}
	_, err := dialectFor("mysql")
	assert.Error(t, err)
}
