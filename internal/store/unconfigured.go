package store

import "context"

type unconfigured struct{}

// Unconfigured returns a Gateway whose every call fails with
// KindNotConfigured. It stands in when no database has been set up.
func Unconfigured() Gateway { return unconfigured{} }

func notConfigured(op, table string) error {
	return &Error{Kind: KindNotConfigured, Op: op, Table: table, Err: ErrNotConfigured}
}

func (unconfigured) Select(_ context.Context, table string, _ Filter, _ any) error {
	return notConfigured("select", table)
}

func (unconfigured) Insert(_ context.Context, table string, _ Row) error {
	return notConfigured("insert", table)
}

func (unconfigured) Update(_ context.Context, table string, _ Filter, _ Row) (int64, error) {
	return 0, notConfigured("update", table)
}

func (unconfigured) Upsert(_ context.Context, table string, _ Row, _ ...string) error {
	return notConfigured("upsert", table)
}

func (unconfigured) Delete(_ context.Context, table string, _ Filter) (int64, error) {
	return 0, notConfigured("delete", table)
}
