// Package periodreset zeroes the weekly and monthly study-time running sums
// on calendar boundaries.
package periodreset

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/progress"
)

// Period names a running sum.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Column maps a period to its stats column.
func (p Period) Column() (string, error) {
	switch p {
	case Weekly:
		return progress.ColumnWeeklyStudyTime, nil
	case Monthly:
		return progress.ColumnMonthlyStudyTime, nil
	}
	return "", fmt.Errorf("unknown period %q", p)
}

// Resetter is satisfied by progress.Aggregator.
type Resetter interface {
	ResetPeriod(ctx context.Context, column string) (int, error)
}

// Scheduler runs the weekly reset at Monday 00:00 and the monthly reset at
// 00:00 on the first, in the configured zone.
type Scheduler struct {
	cron    *gocron.Scheduler
	resets  Resetter
	log     *zap.Logger
	timeout time.Duration
}

func New(r Resetter, loc *time.Location, log *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	cron := gocron.NewScheduler(loc)
	cron.SingletonModeAll()
	return &Scheduler{cron: cron, resets: r, log: log.Named("periodreset"), timeout: time.Minute}
}

// Run resets one period now and reports how many users were touched.
func (s *Scheduler) Run(ctx context.Context, p Period) (int, error) {
	col, err := p.Column()
	if err != nil {
		return 0, err
	}
	n, err := s.resets.ResetPeriod(ctx, col)
	if err != nil {
		return n, fmt.Errorf("%s reset: %w", p, err)
	}
	return n, nil
}

func (s *Scheduler) job(p Period) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		n, err := s.Run(ctx, p)
		if err != nil {
			s.log.Error("reset failed", zap.String("period", string(p)), zap.Int("users", n), zap.Error(err))
			return
		}
		s.log.Info("reset", zap.String("period", string(p)), zap.Int("users", n))
	}
}

// Start registers both jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(1).Monday().At("00:00").Tag(string(Weekly)).Do(s.job(Weekly)); err != nil {
		return fmt.Errorf("schedule weekly reset: %w", err)
	}
	if _, err := s.cron.Every(1).Month(1).At("00:00").Tag(string(Monthly)).Do(s.job(Monthly)); err != nil {
		return fmt.Errorf("schedule monthly reset: %w", err)
	}
	s.cron.StartAsync()
	return nil
}

// NextRuns reports when each registered job fires next.
func (s *Scheduler) NextRuns() map[Period]time.Time {
	out := make(map[Period]time.Time, 2)
	for _, j := range s.cron.Jobs() {
		for _, tag := range j.Tags() {
			out[Period(tag)] = j.NextRun()
		}
	}
	return out
}

func (s *Scheduler) Stop() { s.cron.Stop() }
