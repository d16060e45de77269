package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

// SQL is a Gateway backed by a relational database. Statements are built
// with ent's dialect-aware builder and executed with sqlx.
type SQL struct {
	db      *sqlx.DB
	dialect string

	mu     sync.RWMutex
	tables map[string]bool
}

var _ Gateway = (*SQL)(nil)

// Dialect returns the ent dialect name of the underlying database.
func (s *SQL) Dialect() string { return s.dialect }

// DB returns the underlying sqlx handle for raw queries.
func (s *SQL) DB() *sqlx.DB { return s.db }

// Close closes the database connection.
func (s *SQL) Close() error { return s.db.Close() }

// Ping checks that the database is reachable.
func (s *SQL) Ping(ctx context.Context) error {
	return wrap("ping", "", s.db.PingContext(ctx))
}

func (s *SQL) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.dialect)
}

// refreshTables reloads the set of tables present in the catalogue.
func (s *SQL) refreshTables(ctx context.Context) error {
	var q string
	switch s.dialect {
	case dialect.Postgres:
		q = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()"
	default:
		q = "SELECT name FROM sqlite_master WHERE type = 'table'"
	}
	var names []string
	if err := s.db.SelectContext(ctx, &names, q); err != nil {
		return wrap("introspect", "", err)
	}
	tables := make(map[string]bool, len(names))
	for _, n := range names {
		tables[n] = true
	}
	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()
	return nil
}

func (s *SQL) hasTable(table string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[table]
}

// checkTable fails with KindSchemaMissing for a table absent from the
// catalogue. A miss re-reads the catalogue first, so tables created by
// another process are picked up.
func (s *SQL) checkTable(ctx context.Context, op, table string) error {
	if s.hasTable(table) {
		return nil
	}
	if err := s.refreshTables(ctx); err != nil {
		return err
	}
	if !s.hasTable(table) {
		return &Error{Kind: KindSchemaMissing, Op: op, Table: table,
			Err: fmt.Errorf("table %q does not exist", table)}
	}
	return nil
}

// where converts the filter's predicates. none reports that the filter can
// never match (an empty IN list).
func (s *SQL) where(f Filter) (p *entsql.Predicate, none bool) {
	var preds []*entsql.Predicate
	for _, pr := range f.preds {
		switch pr.op {
		case opEQ:
			preds = append(preds, entsql.EQ(pr.column, pr.values[0]))
		case opGTE:
			preds = append(preds, entsql.GTE(pr.column, pr.values[0]))
		case opLTE:
			preds = append(preds, entsql.LTE(pr.column, pr.values[0]))
		case opIn:
			if len(pr.values) == 0 {
				return nil, true
			}
			preds = append(preds, entsql.In(pr.column, pr.values...))
		case opNotIn:
			if len(pr.values) == 0 {
				continue
			}
			preds = append(preds, entsql.NotIn(pr.column, pr.values...))
		}
	}
	switch len(preds) {
	case 0:
		return nil, false
	case 1:
		return preds[0], false
	default:
		return entsql.And(preds...), false
	}
}

func withTimeout(ctx context.Context, f Filter) (context.Context, context.CancelFunc) {
	if f.timeout > 0 {
		return context.WithTimeout(ctx, f.timeout)
	}
	return ctx, func() {}
}

func (s *SQL) Select(ctx context.Context, table string, f Filter, dest any) error {
	if err := s.checkTable(ctx, "select", table); err != nil {
		return err
	}
	p, none := s.where(f)
	if none {
		return nil
	}
	ctx, cancel := withTimeout(ctx, f)
	defer cancel()

	b := s.builder()
	sel := b.Select().From(b.Table(table))
	if p != nil {
		sel = sel.Where(p)
	}
	for _, o := range f.orders {
		if o.desc {
			sel = sel.OrderBy(entsql.Desc(o.column))
		} else {
			sel = sel.OrderBy(entsql.Asc(o.column))
		}
	}
	if f.limit > 0 {
		sel = sel.Limit(f.limit)
	}
	query, args := sel.Query()
	return wrap("select", table, s.db.SelectContext(ctx, dest, query, args...))
}

func sortedColumns(row Row) ([]string, []any) {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = row[c]
	}
	return cols, vals
}

func (s *SQL) Insert(ctx context.Context, table string, row Row) error {
	if err := s.checkTable(ctx, "insert", table); err != nil {
		return err
	}
	cols, vals := sortedColumns(row)
	query, args := s.builder().Insert(table).Columns(cols...).Values(vals...).Query()
	_, err := s.db.ExecContext(ctx, query, args...)
	return wrap("insert", table, err)
}

func (s *SQL) Upsert(ctx context.Context, table string, row Row, conflictKeys ...string) error {
	if err := s.checkTable(ctx, "upsert", table); err != nil {
		return err
	}
	if len(conflictKeys) == 0 {
		return &Error{Op: "upsert", Table: table, Err: fmt.Errorf("no conflict keys")}
	}
	cols, vals := sortedColumns(row)
	query, args := s.builder().Insert(table).
		Columns(cols...).
		Values(vals...).
		OnConflict(entsql.ConflictColumns(conflictKeys...), entsql.ResolveWithNewValues()).
		Query()
	_, err := s.db.ExecContext(ctx, query, args...)
	return wrap("upsert", table, err)
}

func (s *SQL) Update(ctx context.Context, table string, f Filter, patch Row) (int64, error) {
	if err := s.checkTable(ctx, "update", table); err != nil {
		return 0, err
	}
	if len(patch) == 0 {
		return 0, nil
	}
	p, none := s.where(f)
	if none {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, f)
	defer cancel()

	upd := s.builder().Update(table)
	cols, vals := sortedColumns(patch)
	for i, c := range cols {
		upd = upd.Set(c, vals[i])
	}
	if p != nil {
		upd = upd.Where(p)
	}
	query, args := upd.Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap("update", table, err)
	}
	n, err := res.RowsAffected()
	return n, wrap("update", table, err)
}

func (s *SQL) Delete(ctx context.Context, table string, f Filter) (int64, error) {
	if err := s.checkTable(ctx, "delete", table); err != nil {
		return 0, err
	}
	p, none := s.where(f)
	if none {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, f)
	defer cancel()

	del := s.builder().Delete(table)
	if p != nil {
		del = del.Where(p)
	}
	query, args := del.Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrap("delete", table, err)
	}
	n, err := res.RowsAffected()
	return n, wrap("delete", table, err)
}
