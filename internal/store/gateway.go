package store

import (
	"context"
	"slices"
	"time"
)

// Table names consumed by the progress core.
const (
	TableStudySessions     = "study_sessions"
	TableUserProgressStats = "user_progress_stats"
	TableSubjectProgress   = "subject_progress"
)

// Row is a column → value map used for inserts, upserts and update patches.
type Row map[string]any

// Gateway is the generic table-oriented data access contract.
//
// Select scans matching rows into dest, which must be a pointer to a slice
// of structs carrying `db` tags for every column of the table.
type Gateway interface {
	Select(ctx context.Context, table string, f Filter, dest any) error
	Insert(ctx context.Context, table string, row Row) error
	// Update applies patch to every row matching f and returns the number
	// of rows affected.
	Update(ctx context.Context, table string, f Filter, patch Row) (int64, error)
	// Upsert inserts row, or overwrites the conflicting row's columns with
	// the new values when a row with the same conflictKeys exists.
	Upsert(ctx context.Context, table string, row Row, conflictKeys ...string) error
	Delete(ctx context.Context, table string, f Filter) (int64, error)
}

type predOp int

const (
	opEQ predOp = iota
	opGTE
	opLTE
	opIn
	opNotIn
)

type predicate struct {
	column string
	op     predOp
	values []any
}

type ordering struct {
	column string
	desc   bool
}

// Filter describes which rows an operation applies to. The zero Filter
// matches every row. Filters are immutable; each method returns a copy.
type Filter struct {
	preds   []predicate
	orders  []ordering
	limit   int
	timeout time.Duration
}

// Where returns a Filter matching rows whose column equals value.
func Where(column string, value any) Filter {
	return Filter{}.Eq(column, value)
}

func (f Filter) with(p predicate) Filter {
	f.preds = append(slices.Clip(f.preds), p)
	return f
}

// Eq adds an equality predicate.
func (f Filter) Eq(column string, value any) Filter {
	return f.with(predicate{column: column, op: opEQ, values: []any{value}})
}

// GTE adds a column >= value predicate.
func (f Filter) GTE(column string, value any) Filter {
	return f.with(predicate{column: column, op: opGTE, values: []any{value}})
}

// LTE adds a column <= value predicate.
func (f Filter) LTE(column string, value any) Filter {
	return f.with(predicate{column: column, op: opLTE, values: []any{value}})
}

// In adds a column IN (values) predicate. An empty list matches nothing.
func (f Filter) In(column string, values ...any) Filter {
	return f.with(predicate{column: column, op: opIn, values: values})
}

// NotIn adds a column NOT IN (values) predicate. An empty list excludes nothing.
func (f Filter) NotIn(column string, values ...any) Filter {
	return f.with(predicate{column: column, op: opNotIn, values: values})
}

// OrderBy appends an ordering term.
func (f Filter) OrderBy(column string, desc bool) Filter {
	f.orders = append(slices.Clip(f.orders), ordering{column: column, desc: desc})
	return f
}

// Limit caps the number of rows returned by Select (0 = unlimited).
func (f Filter) Limit(n int) Filter {
	f.limit = n
	return f
}

// Timeout aborts the operation after d (0 = no per-call bound).
func (f Filter) Timeout(d time.Duration) Filter {
	f.timeout = d
	return f
}

// Strings converts a string slice for use with In/NotIn.
func Strings(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
