package progress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/store"
)

// Default tuning values.
const (
	DefaultReadTimeout      = 10 * time.Second
	DefaultAuthTimeout      = 5 * time.Second
	DefaultMaxWriteAttempts = 3
)

// Options configure the progress components. The zero value is usable.
type Options struct {
	Logger *zap.Logger

	// Location is the zone in which calendar dates and hours of day are
	// computed. Defaults to time.Local.
	Location *time.Location

	// Now overrides the clock, for tests.
	Now func() time.Time

	ReadTimeout      time.Duration
	AuthTimeout      time.Duration
	MaxWriteAttempts int

	Curriculum *Curriculum
}

// env is the state shared by every component built from one Options.
type env struct {
	gw          store.Gateway
	log         *zap.Logger
	loc         *time.Location
	now         func() time.Time
	readTimeout time.Duration
	authTimeout time.Duration
	attempts    int
	curriculum  *Curriculum
}

func newEnv(gw store.Gateway, opts Options) *env {
	e := &env{
		gw:          gw,
		log:         opts.Logger,
		loc:         opts.Location,
		now:         opts.Now,
		readTimeout: opts.ReadTimeout,
		authTimeout: opts.AuthTimeout,
		attempts:    opts.MaxWriteAttempts,
		curriculum:  opts.Curriculum,
	}
	if e.gw == nil {
		e.gw = store.Unconfigured()
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.readTimeout <= 0 {
		e.readTimeout = DefaultReadTimeout
	}
	if e.authTimeout <= 0 {
		e.authTimeout = DefaultAuthTimeout
	}
	if e.attempts <= 0 {
		e.attempts = DefaultMaxWriteAttempts
	}
	if e.curriculum == nil {
		e.curriculum = DefaultCurriculum()
	}
	return e
}

func (e *env) clock() time.Time { return e.now().In(e.loc) }

func (e *env) today() Date { return DateOf(e.clock()) }

// swallow logs and drops connectivity and not-configured failures of a
// write; every other error is returned.
func (e *env) swallow(op, userID string, err error) error {
	if err == nil {
		return nil
	}
	if store.IsDegradable(err) {
		e.log.Warn("write skipped, store unavailable",
			zap.String("op", op),
			zap.String("user_id", userID),
			zap.Stringer("kind", store.KindOf(err)),
			zap.Error(err))
		return nil
	}
	return err
}

// Service bundles the progress components over a single gateway.
type Service struct {
	Recorder   *Recorder
	Aggregator *Aggregator
	Tracker    *Tracker
	Engine     *Engine
	Cache      *StatsCache
}

// New wires every progress component to gw.
func New(gw store.Gateway, opts Options) *Service {
	e := newEnv(gw, opts)
	agg := &Aggregator{env: e}
	tr := &Tracker{env: e}
	cache := &StatsCache{env: e, agg: agg, entries: make(map[string]UserProgressStats)}
	agg.cache = cache
	return &Service{
		Recorder:   &Recorder{env: e, agg: agg, tracker: tr, cache: cache},
		Aggregator: agg,
		Tracker:    tr,
		Engine:     &Engine{env: e},
		Cache:      cache,
	}
}

// Curriculum returns the curriculum table the service was built with.
func (s *Service) Curriculum() *Curriculum { return s.Tracker.env.curriculum }

// Snapshot is every report for one user, read at the same moment.
type Snapshot struct {
	Stats    Outcome[UserProgressStats]
	Streak   Outcome[StreakReport]
	Weekly   Outcome[WeeklyReport]
	Monthly  Outcome[MonthlyReport]
	Insights Outcome[Insights]
	Subjects Outcome[[]SubjectProgress]
}

// Snapshot reads every report for userID. Stats come through the cache.
func (s *Service) Snapshot(ctx context.Context, userID string) Snapshot {
	return Snapshot{
		Stats:    s.Cache.Get(ctx, userID),
		Streak:   s.Aggregator.Streak(ctx, userID),
		Weekly:   s.Engine.Weekly(ctx, userID),
		Monthly:  s.Engine.Monthly(ctx, userID),
		Insights: s.Engine.Insights(ctx, userID),
		Subjects: s.Tracker.List(ctx, userID),
	}
}

// Degraded lists the sections that fell back to defaults.
func (s Snapshot) Degraded() []string {
	var out []string
	add := func(name string, degraded bool) {
		if degraded {
			out = append(out, name)
		}
	}
	add("stats", s.Stats.Degraded)
	add("streak", s.Streak.Degraded)
	add("weekly", s.Weekly.Degraded)
	add("monthly", s.Monthly.Degraded)
	add("insights", s.Insights.Degraded)
	add("subjects", s.Subjects.Degraded)
	return out
}

// SetupIncomplete reports whether any section failed for missing tables.
func (s Snapshot) SetupIncomplete() bool {
	return s.Stats.SetupIncomplete() || s.Streak.SetupIncomplete() ||
		s.Weekly.SetupIncomplete() || s.Monthly.SetupIncomplete() ||
		s.Insights.SetupIncomplete() || s.Subjects.SetupIncomplete()
}
