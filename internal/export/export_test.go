package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/store"
)

func score(v int) *int { return &v }

func TestWriteWorkbook(t *testing.T) {
	ctx := context.Background()
	gw, err := store.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer gw.Close()
	require.NoError(t, gw.Migrate(ctx))

	svc := progress.New(gw, progress.Options{Location: time.UTC})
	require.NoError(t, svc.Tracker.Initialize(ctx, "u1", []string{"Physics", "Chemistry"}, "12"))
	require.NoError(t, svc.Recorder.Record(ctx, "u1", progress.SessionLesson, "Physics", 40, nil))
	require.NoError(t, svc.Recorder.Record(ctx, "u1", progress.SessionTest, "Chemistry", 20, score(60)))

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	report := Collect(ctx, svc, "u1", now)
	assert.Empty(t, report.Degraded())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetWeekly, SheetMonthly, SheetInsights, SheetSubjects}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Field", "Value"}, summary[0])
	assert.Equal(t, []string{"User", "u1"}, summary[1])
	assert.Contains(t, summary, []string{"Total study time (min)", "60"})
	assert.Contains(t, summary, []string{"Unavailable sections", "none"})

	monthly, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Subject", "Time (min)", "Progress (%)"}, monthly[0])
	assert.Len(t, monthly, 1+2+1+6)

	subjects, err := f.GetRows(SheetSubjects)
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.Equal(t, []string{"Chemistry", "0", "10", "0"}, subjects[1])
	assert.Equal(t, []string{"Physics", "1", "14", "7"}, subjects[2])
}

func TestWriteDegradedReport(t *testing.T) {
	ctx := context.Background()
	svc := progress.New(nil, progress.Options{})
	report := Collect(ctx, svc, "u1", time.Now())

	assert.Equal(t, []string{"stats", "streak", "weekly", "monthly", "insights", "subjects"}, report.Degraded())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, report))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetWeekly)
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"Most studied subject", "None"})
}
