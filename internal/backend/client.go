// Package backend defines the narrow persistence surface the rest of the
// application talks to: plain table reads/writes plus named remote
// procedures. Domain services depend on the Client interface only, so they
// can be exercised against the in-memory fake in backendtest.
package backend

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("backend: row not found")
	ErrConflict = errors.New("backend: unique constraint violated")
)

// Row is a single table row keyed by column name.
type Row map[string]any

// Filter matches rows by column equality.
type Filter map[string]any

type Client interface {
	// Insert writes one row and returns its identifier. When the row has no
	// "id" column, one is generated.
	Insert(ctx context.Context, table string, row Row) (string, error)
	// BulkInsert writes all rows as a single batched operation.
	BulkInsert(ctx context.Context, table string, rows []Row) error
	Select(ctx context.Context, table string, filter Filter, columns ...string) ([]Row, error)
	Update(ctx context.Context, table string, filter Filter, fields Row) error
	Delete(ctx context.Context, table string, filter Filter) error
	// CallProcedure invokes a named server-side procedure with named
	// arguments, e.g. decrement(id, x).
	CallProcedure(ctx context.Context, name string, args map[string]any) error
}

// String returns the named column as a string, or "" when absent.
func (r Row) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the named column as an int64, tolerating the integer widths
// different drivers hand back.
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Bool returns the named column as a bool, or false when absent.
func (r Row) Bool(key string) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return false
}

// Time returns the named column as a time.Time, or the zero time.
func (r Row) Time(key string) time.Time {
	if v, ok := r[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}
