package progress

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/store"
)

// Outcome is the result of a read that never fails. When the store could
// not be read, Value holds the documented default, Degraded is set and
// Reason describes the failure.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
	Kind     store.Kind
}

// Ok wraps a successfully read value.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade wraps a default value substituted for a failed read.
func Degrade[T any](def T, err error) Outcome[T] {
	o := Outcome[T]{Value: def, Degraded: true, Kind: store.KindOf(err)}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}

// SetupIncomplete reports whether the read failed because the tables
// have not been created.
func (o Outcome[T]) SetupIncomplete() bool {
	return o.Degraded && o.Kind == store.KindSchemaMissing
}

// readCtx bounds a read by the configured read timeout.
func (e *env) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.readTimeout)
}

// degraded logs a failed read and returns the default outcome.
func degraded[T any](e *env, op, userID string, def T, err error) Outcome[T] {
	e.log.Warn("read degraded to defaults",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.Stringer("kind", store.KindOf(err)),
		zap.Error(err))
	return Degrade(def, err)
}
