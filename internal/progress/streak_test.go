package progress

import (
	"context"
	"testing"
	"time"
)

func TestClassifyStreak(t *testing.T) {
	today := NewDate(2024, time.March, 15)
	ptr := func(d Date) *Date { return &d }

	tests := []struct {
		name string
		last *Date
		want StreakState
	}{
		{"never studied", nil, StreakActive},
		{"today", ptr(today), StreakActive},
		{"future", ptr(today.AddDays(2)), StreakActive},
		{"yesterday", ptr(today.AddDays(-1)), StreakAtRisk},
		{"two days ago", ptr(today.AddDays(-2)), StreakBroken},
		{"three days ago", ptr(today.AddDays(-3)), StreakBroken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStreak(today, tt.last); got != tt.want {
				t.Errorf("ClassifyStreak() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyStreakAcrossMonthBoundary(t *testing.T) {
	last := NewDate(2024, time.February, 29)
	if got := ClassifyStreak(NewDate(2024, time.March, 1), &last); got != StreakAtRisk {
		t.Errorf("got %s, want at_risk", got)
	}
}

func TestNextStreak(t *testing.T) {
	today := NewDate(2024, time.March, 15)
	ptr := func(d Date) *Date { return &d }

	tests := []struct {
		name    string
		current int
		last    *Date
		want    int
	}{
		{"first session", 0, nil, 1},
		{"same day", 4, ptr(today), 4},
		{"consecutive day", 4, ptr(today.AddDays(-1)), 5},
		{"gap resets", 4, ptr(today.AddDays(-2)), 1},
		{"long gap resets", 9, ptr(today.AddDays(-40)), 1},
		{"clock skew keeps streak", 4, ptr(today.AddDays(1)), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.current, tt.last, today); got != tt.want {
				t.Errorf("NextStreak(%d) = %d, want %d", tt.current, got, tt.want)
			}
		})
	}
}

func TestStreakAcrossRecordedDays(t *testing.T) {
	svc, clock := newTestService(t, openTestGateway(t))
	ctx := context.Background()

	record := func() int {
		t.Helper()
		if err := svc.Recorder.Record(ctx, "u1", SessionLesson, "Math", 30, nil); err != nil {
			t.Fatalf("Record: %v", err)
		}
		out := svc.Aggregator.Stats(ctx, "u1")
		if out.Degraded {
			t.Fatalf("stats degraded: %s", out.Reason)
		}
		return out.Value.StudyStreakDays
	}

	for day := 1; day <= 4; day++ {
		if got := record(); got != day {
			t.Fatalf("day %d: streak = %d, want %d", day, got, day)
		}
		if day < 4 {
			clock.advanceDays(1)
		}
	}

	// Same day leaves the streak alone.
	if got := record(); got != 4 {
		t.Errorf("same day: streak = %d, want 4", got)
	}

	// A two-day gap starts over.
	clock.advanceDays(2)
	if got := record(); got != 1 {
		t.Errorf("after gap: streak = %d, want 1", got)
	}
}

func TestStreakReport(t *testing.T) {
	svc, clock := newTestService(t, openTestGateway(t))
	ctx := context.Background()

	out := svc.Aggregator.Streak(ctx, "u1")
	if out.Degraded || !out.Value.NeverStudied || out.Value.State != StreakActive {
		t.Fatalf("new user report = %+v", out)
	}

	if err := svc.Recorder.Record(ctx, "u1", SessionLesson, "Math", 30, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	clock.advanceDays(1)
	out = svc.Aggregator.Streak(ctx, "u1")
	if out.Value.NeverStudied || out.Value.State != StreakAtRisk || out.Value.Days != 1 {
		t.Errorf("next day report = %+v", out.Value)
	}

	clock.advanceDays(2)
	if got := svc.Aggregator.Streak(ctx, "u1").Value.State; got != StreakBroken {
		t.Errorf("state = %s, want broken", got)
	}
}
