package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Kind classifies a gateway failure so callers can decide whether to
// degrade, lazily initialize, or surface the error.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnectivity
	KindNotConfigured
	KindNotFound
	KindSchemaMissing
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindNotConfigured:
		return "not-configured"
	case KindNotFound:
		return "not-found"
	case KindSchemaMissing:
		return "schema-missing"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every Gateway implementation.
type Error struct {
	Kind  Kind
	Op    string // select, insert, update, upsert, delete
	Table string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Table, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s (%s)", e.Op, e.Table, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotConfigured is wrapped by every call on an unconfigured gateway.
var ErrNotConfigured = errors.New("persistence gateway is not configured")

// KindOf returns the Kind of err, or KindUnknown if err does not carry one.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsDegradable reports whether err means the backing store is unreachable
// or absent, as opposed to a logic or data error.
func IsDegradable(err error) bool {
	switch KindOf(err) {
	case KindConnectivity, KindNotConfigured:
		return true
	}
	return false
}

// classify maps driver-level failures onto a Kind.
func classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return KindConnectivity
	case errors.Is(err, sql.ErrNoRows):
		return KindNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "42P01": // undefined_table
			return KindSchemaMissing
		case pqErr.Code.Class() == "08", // connection_exception
			pqErr.Code.Class() == "57": // operator_intervention
			return KindConnectivity
		}
		return KindUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	return KindUnknown
}

func wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Table: table, Err: err}
}
