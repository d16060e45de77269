package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/studypulse/internal/store"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advanceDays(n int) { c.t = c.t.AddDate(0, 0, n) }

func openTestGateway(t *testing.T) *store.SQL {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

// newTestService wires a service over gw with a fake clock fixed at
// 2024-03-15 10:00 UTC.
func newTestService(t *testing.T, gw store.Gateway) (*Service, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	svc := New(gw, Options{Location: time.UTC, Now: clock.Now})
	return svc, clock
}

func intPtr(v int) *int { return &v }

// failingGateway fails every call with an error of the given kind.
type failingGateway struct {
	kind store.Kind
}

func (g failingGateway) fail(op, table string) error {
	return &store.Error{Kind: g.kind, Op: op, Table: table, Err: errors.New("injected failure")}
}

func (g failingGateway) Select(_ context.Context, table string, _ store.Filter, _ any) error {
	return g.fail("select", table)
}

func (g failingGateway) Insert(_ context.Context, table string, _ store.Row) error {
	return g.fail("insert", table)
}

func (g failingGateway) Update(_ context.Context, table string, _ store.Filter, _ store.Row) (int64, error) {
	return 0, g.fail("update", table)
}

func (g failingGateway) Upsert(_ context.Context, table string, _ store.Row, _ ...string) error {
	return g.fail("upsert", table)
}

func (g failingGateway) Delete(_ context.Context, table string, _ store.Filter) (int64, error) {
	return 0, g.fail("delete", table)
}

// hookGateway runs beforeUpdate ahead of every Update on the wrapped
// gateway, to simulate a concurrent writer.
type hookGateway struct {
	store.Gateway
	beforeUpdate func(ctx context.Context, table string)
	updates      int
}

func (g *hookGateway) Update(ctx context.Context, table string, f store.Filter, patch store.Row) (int64, error) {
	g.updates++
	if g.beforeUpdate != nil {
		g.beforeUpdate(ctx, table)
	}
	return g.Gateway.Update(ctx, table, f, patch)
}

// selectFailGateway fails selects on one table only.
type selectFailGateway struct {
	store.Gateway
	table string
	kind  store.Kind
}

func (g selectFailGateway) Select(ctx context.Context, table string, f store.Filter, dest any) error {
	if table == g.table {
		return &store.Error{Kind: g.kind, Op: "select", Table: table, Err: errors.New("injected failure")}
	}
	return g.Gateway.Select(ctx, table, f, dest)
}
