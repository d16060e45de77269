package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studypulse/internal/identity"
	"github.com/abhisek/studypulse/internal/llm"
	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/tutor"
)

type fixture struct {
	app   *fiber.App
	svc   *progress.Service
	token string
}

func setup(t *testing.T, gw store.Gateway) *fixture {
	t.Helper()
	ctx := context.Background()

	ids, err := identity.New(identity.Config{
		Secret:    "testsecret",
		TokenPath: filepath.Join(t.TempDir(), "session.jwt"),
	})
	require.NoError(t, err)
	token, err := ids.SignIn(ctx, "u1")
	require.NoError(t, err)

	svc := progress.New(gw, progress.Options{Location: time.UTC})
	tu := tutor.New(llm.NewOfflineProvider(llm.OfflineReply), svc.Recorder, svc.Tracker, tutor.DefaultConfig(), nil)

	srv := New(Deps{Progress: svc, Auth: ids, Tutor: tu, DefaultGrade: "12"})
	return &fixture{app: srv.App(), svc: svc, token: token}
}

func migrated(t *testing.T) store.Gateway {
	t.Helper()
	ctx := context.Background()
	gw, err := store.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { gw.Close() })
	require.NoError(t, gw.Migrate(ctx))
	return gw
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func TestRequiresBearerToken(t *testing.T) {
	f := setup(t, migrated(t))

	f.token = ""
	status, _ := f.do(t, http.MethodGet, "/api/progress/stats", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	f.token = "garbage"
	status, body := f.do(t, http.MethodGet, "/api/progress/stats", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
}

func TestHealthzIsPublic(t *testing.T) {
	f := setup(t, migrated(t))
	f.token = ""
	status, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRecordSessionThenStats(t *testing.T) {
	f := setup(t, migrated(t))

	for _, s := range []map[string]any{
		{"session_type": "test", "subject": "Physics", "duration_minutes": 30, "score": 80},
		{"session_type": "test", "subject": "Physics", "duration_minutes": 30, "score": 90},
		{"session_type": "lesson", "subject": "Physics", "duration_minutes": 20},
	} {
		status, _ := f.do(t, http.MethodPost, "/api/sessions", s)
		require.Equal(t, fiber.StatusCreated, status)
	}

	status, body := f.do(t, http.MethodGet, "/api/progress/stats", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, body, "degraded")
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 80, data["total_study_time_minutes"])
	assert.EqualValues(t, 2, data["total_tests_taken"])
	assert.EqualValues(t, 85, data["average_test_score"])
	assert.EqualValues(t, 1, data["completed_lessons"])

	status, body = f.do(t, http.MethodGet, "/api/progress/streak", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "active", body["data"].(map[string]any)["state"])
}

func TestRecordSessionValidation(t *testing.T) {
	f := setup(t, migrated(t))
	tests := []map[string]any{
		{"session_type": "quiz", "subject": "Math", "duration_minutes": 10},
		{"session_type": "lesson", "subject": "Math", "duration_minutes": 0},
		{"session_type": "test", "subject": "Math", "duration_minutes": 10},
		{"session_type": "test", "subject": "Math", "duration_minutes": 10, "score": 120},
		{"session_type": "lesson", "subject": "", "duration_minutes": 10},
	}
	for _, body := range tests {
		status, _ := f.do(t, http.MethodPost, "/api/sessions", body)
		assert.Equal(t, fiber.StatusBadRequest, status, "body %v", body)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	f := setup(t, migrated(t))
	f.do(t, http.MethodPost, "/api/sessions", map[string]any{"session_type": "lesson", "subject": "Chemistry", "duration_minutes": 150})

	status, body := f.do(t, http.MethodGet, "/api/analytics/weekly", nil)
	require.Equal(t, fiber.StatusOK, status)
	weekly := body["data"].(map[string]any)
	assert.EqualValues(t, 150, weekly["totalStudyTime"])
	assert.EqualValues(t, 50, weekly["weeklyGoalProgress"])
	assert.Equal(t, "Chemistry", weekly["mostStudiedSubject"])

	status, body = f.do(t, http.MethodGet, "/api/analytics/monthly", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["lessonsCompleted"])

	status, body = f.do(t, http.MethodGet, "/api/analytics/insights", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["data"].(map[string]any)["preferredStudyTime"])
}

func TestSubjectsLifecycle(t *testing.T) {
	f := setup(t, migrated(t))

	status, body := f.do(t, http.MethodPost, "/api/subjects", map[string]any{"board": "CBSE", "group": "science-pcm"})
	require.Equal(t, fiber.StatusCreated, status)
	initial := body["data"].([]any)
	assert.NotEmpty(t, initial)

	status, body = f.do(t, http.MethodPut, "/api/subjects", map[string]any{"subjects": []string{"Physics", "Astronomy"}})
	require.Equal(t, fiber.StatusOK, status)
	names := []string{}
	for _, row := range body["data"].([]any) {
		names = append(names, row.(map[string]any)["subject_name"].(string))
	}
	assert.Equal(t, []string{"Astronomy", "Physics"}, names)

	status, _ = f.do(t, http.MethodPost, "/api/subjects", map[string]any{"board": "CBSE", "group": "music"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestTutorAsk(t *testing.T) {
	f := setup(t, migrated(t))

	status, body := f.do(t, http.MethodPost, "/api/tutor/ask", map[string]any{"subject": "Biology", "question": "What is a cell?"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["data"].(map[string]any)["answer"], "offline")

	stats := f.svc.Aggregator.Stats(context.Background(), "u1").Value
	assert.Equal(t, 1, stats.AISessionsCount)

	status, _ = f.do(t, http.MethodPost, "/api/tutor/ask", map[string]any{"subject": "Biology", "question": " "})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDegradedReadsAnswer200(t *testing.T) {
	f := setup(t, store.Unconfigured())

	status, body := f.do(t, http.MethodGet, "/api/analytics/weekly", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["degraded"])
	assert.Equal(t, "None", body["data"].(map[string]any)["mostStudiedSubject"])

	status, body = f.do(t, http.MethodGet, "/api/subjects", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["degraded"])
	assert.Equal(t, []any{}, body["data"])
}

func TestSchemaMissingWriteIs503(t *testing.T) {
	ctx := context.Background()
	gw, err := store.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer gw.Close()

	f := setup(t, gw)
	status, body := f.do(t, http.MethodPost, "/api/sessions", map[string]any{"session_type": "lesson", "subject": "Math", "duration_minutes": 10})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "setup incomplete: run studypulse migrate", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := setup(t, store.Unconfigured())

	f.do(t, http.MethodGet, "/api/analytics/weekly", nil)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, `studypulse_http_requests_total{method="GET",route="/api/analytics/weekly",status="200"} 1`)
	assert.Contains(t, text, `studypulse_degraded_reads_total{kind="not-configured",route="/api/analytics/weekly"} 1`)
}

func TestMetricsCountRecordedSessions(t *testing.T) {
	f := setup(t, migrated(t))

	status, _ := f.do(t, http.MethodPost, "/api/sessions", map[string]any{"session_type": "test", "subject": "Math", "duration_minutes": 10, "score": 70})
	require.Equal(t, fiber.StatusCreated, status)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `studypulse_sessions_total{result="stored",session_type="test"} 1`)
	assert.NotContains(t, string(raw), `result="skipped"`)
}

func TestMetricsSeparateSkippedSessions(t *testing.T) {
	f := setup(t, store.Unconfigured())

	status, _ := f.do(t, http.MethodPost, "/api/sessions", map[string]any{"session_type": "lesson", "subject": "Math", "duration_minutes": 10})
	require.Equal(t, fiber.StatusCreated, status)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `studypulse_sessions_total{result="skipped",session_type="lesson"} 1`)
	assert.NotContains(t, string(raw), `result="stored"`)
}
