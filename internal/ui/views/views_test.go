package views

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/ui/theme"
)

func TestMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0 min"},
		{59, "59 min"},
		{60, "1h 00m"},
		{135, "2h 15m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, minutes(tt.in))
	}
}

func TestStatsPlain(t *testing.T) {
	last := progress.NewDate(2025, 3, 10)
	stats := progress.Ok(progress.UserProgressStats{
		TotalStudyTimeMinutes: 95,
		CompletedLessons:      3,
		TotalTestsTaken:       1,
		AverageTestScore:      80,
	})
	streak := progress.Ok(progress.StreakReport{State: progress.StreakAtRisk, Days: 4, LastStudyDate: &last})

	out := Stats(theme.Plain(), stats, streak)
	assert.Contains(t, out, "1h 35m")
	assert.Contains(t, out, "at risk, study today")
	assert.Contains(t, out, "2025-03-10")
	assert.NotContains(t, out, "\x1b[", "plain styles must not emit escapes")
}

func TestNeverStudiedStreak(t *testing.T) {
	out := Streak(theme.Plain(), progress.Ok(progress.StreakReport{State: progress.StreakActive, NeverStudied: true}))
	assert.Contains(t, out, "not started")
	assert.Contains(t, out, "never")
}

func TestDegradedNotices(t *testing.T) {
	down := progress.Degrade(progress.DefaultWeekly(), &store.Error{Kind: store.KindConnectivity, Err: errors.New("down")})
	assert.Contains(t, Weekly(theme.Plain(), down, 80), "progress store unavailable")

	missing := progress.Degrade(progress.DefaultInsights(), &store.Error{Kind: store.KindSchemaMissing, Err: errors.New("no table")})
	assert.Contains(t, Insights(theme.Plain(), missing), SetupMessage)
}

func TestWeeklyGoalBar(t *testing.T) {
	out := Weekly(theme.Plain(), progress.Ok(progress.WeeklyReport{
		TotalStudyTime:     150,
		MostStudiedSubject: "Physics",
		WeeklyGoalProgress: 50,
	}), 80)
	assert.Contains(t, out, "Goal 300 min")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "Physics")
}

func TestMonthlyAndSubjects(t *testing.T) {
	monthly := Monthly(theme.Plain(), progress.Ok(progress.MonthlyReport{
		TotalStudyTime:   200,
		SubjectBreakdown: []progress.SubjectTime{{Subject: "Chemistry", Time: 120, Progress: 40}},
		ImprovementAreas: []string{"Physics"},
		Achievements:     []string{"Consistent learner", "Test taker"},
	}), 80)
	assert.Contains(t, monthly, "Chemistry")
	assert.Contains(t, monthly, "120 min")
	assert.Contains(t, monthly, "Test taker")

	empty := Subjects(theme.Plain(), progress.Ok([]progress.SubjectProgress{}), 80)
	assert.Contains(t, empty, "subjects init")

	subjects := Subjects(theme.Plain(), progress.Ok([]progress.SubjectProgress{
		{SubjectName: "Mathematics", CompletedTopics: 3, TotalTopics: 13, ProgressPercentage: 23},
	}), 80)
	assert.Contains(t, subjects, " 3/13")
	assert.Contains(t, subjects, "23%")
}

func TestOverviewSetupIncomplete(t *testing.T) {
	err := &store.Error{Kind: store.KindSchemaMissing, Err: errors.New("no table")}
	snap := progress.Snapshot{Stats: progress.Degrade(progress.UserProgressStats{}, err)}
	out := Overview(theme.Plain(), snap, 80)
	assert.Equal(t, SetupMessage+"\n", out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Physics", truncate("Physics", 16))
	got := truncate("Environmental Science", 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
