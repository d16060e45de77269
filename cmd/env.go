package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/config"
	"github.com/abhisek/studypulse/internal/identity"
	"github.com/abhisek/studypulse/internal/llm"
	"github.com/abhisek/studypulse/internal/logging"
	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/tutor"
	"github.com/abhisek/studypulse/internal/ui/theme"
)

// ErrNotSignedIn is returned when a command needs a user and none is known.
var ErrNotSignedIn = errors.New("not signed in: run studypulse login <user> or pass --user")

// appEnv is everything a command needs, built from flags and config.
type appEnv struct {
	cfg      config.Config
	log      *zap.Logger
	db       *store.SQL
	progress *progress.Service
	auth     *identity.Provider
	styles   theme.Styles
	out      io.Writer

	closers []func()
}

type setupOptions struct {
	// requireDB fails instead of degrading when the store cannot be opened.
	requireDB bool
	logFormat string
}

type setupOption func(*setupOptions)

func requireDB() setupOption { return func(o *setupOptions) { o.requireDB = true } }

func logFormat(f string) setupOption { return func(o *setupOptions) { o.logFormat = f } }

// setup loads config, opens the store and wires the services. Callers must
// Close the result.
func setup(cmd *cobra.Command, opts ...setupOption) (*appEnv, error) {
	var so setupOptions
	for _, o := range opts {
		o(&so)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if so.logFormat != "" {
		cfg.Log.Format = so.logFormat
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	e := &appEnv{
		cfg:    cfg,
		log:    log,
		out:    cmd.OutOrStdout(),
		styles: theme.For(cmd.OutOrStdout()),
	}
	e.closers = append(e.closers, func() { _ = log.Sync() })

	loc, err := cfg.Location()
	if err != nil {
		e.Close()
		return nil, err
	}
	var curriculum *progress.Curriculum
	if cfg.Curriculum != "" {
		if curriculum, err = progress.LoadCurriculum(cfg.Curriculum); err != nil {
			e.Close()
			return nil, err
		}
	}

	gw, err := e.openStore(ctx, so.requireDB)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.progress = progress.New(gw, progress.Options{
		Logger:      log.Named("progress"),
		Location:    loc,
		ReadTimeout: cfg.ReadTimeout,
		AuthTimeout: cfg.AuthTimeout,
		Curriculum:  curriculum,
	})

	if e.auth, err = newIdentity(cfg.Identity); err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, e.progress.Cache.Watch(e.auth))
	return e, nil
}

// openStore connects to the configured database. Unless required, a
// failure degrades to an unconfigured gateway so reads show defaults.
func (e *appEnv) openStore(ctx context.Context, required bool) (store.Gateway, error) {
	dsn := e.cfg.Database.DSN
	if e.cfg.Database.Driver == "sqlite" {
		var err error
		if dsn == "" {
			dsn, err = store.DefaultDBPath()
		} else if dsn != ":memory:" {
			err = store.EnsureDir(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}

	db, err := store.Open(ctx, e.cfg.Database.Driver, dsn)
	if err != nil {
		if required {
			return nil, err
		}
		e.log.Warn("progress store unavailable", zap.String("driver", e.cfg.Database.Driver), zap.Error(err))
		return store.Unconfigured(), nil
	}
	e.db = db
	e.closers = append(e.closers, func() { _ = db.Close() })
	return db, nil
}

func newIdentity(c config.IdentityConfig) (*identity.Provider, error) {
	secret := c.Secret
	if secret == "" {
		path, err := identity.DefaultSecretPath()
		if err != nil {
			return nil, err
		}
		if secret, err = identity.LoadOrCreateSecret(path); err != nil {
			return nil, err
		}
	}
	tokenPath := c.TokenPath
	if tokenPath == "" {
		p, err := identity.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		tokenPath = p
	}
	return identity.New(identity.Config{Secret: secret, TTL: c.TTL, TokenPath: tokenPath})
}

// Close releases resources in reverse order of acquisition.
func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// user resolves the acting user: --user wins over the signed-in session.
func (e *appEnv) user(cmd *cobra.Command) (string, error) {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u, nil
	}
	if u, ok := e.auth.CurrentUserID(cmd.Context()); ok {
		return u, nil
	}
	return "", ErrNotSignedIn
}

// tutor builds the AI tutor from the LLM config.
func (e *appEnv) tutor(ctx context.Context) (*tutor.Tutor, error) {
	p, err := llm.NewProvider(ctx, e.cfg.LLM, e.log.Named("llm"))
	if err != nil {
		return nil, err
	}
	cfg := tutor.DefaultConfig()
	cfg.Timeout = e.cfg.LLM.Timeout
	return tutor.New(p, e.progress.Recorder, e.progress.Tracker, cfg, e.log.Named("tutor")), nil
}

// wantJSON reports whether --json was passed.
func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonOutcome is the JSON shape of a degradable read, matching the HTTP API.
type jsonOutcome struct {
	Data     any    `json:"data"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func outcomeJSON[T any](o progress.Outcome[T]) jsonOutcome {
	return jsonOutcome{Data: o.Value, Degraded: o.Degraded, Reason: o.Reason}
}
