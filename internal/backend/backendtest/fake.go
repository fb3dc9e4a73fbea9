// Package backendtest provides an in-memory, call-recording implementation
// of backend.Client for tests.
package backendtest

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/bonison01/shop3/internal/backend"
)

// Call is one recorded operation against the fake.
type Call struct {
	Op     string
	Target string
}

// Fake is an in-memory backend. Tables are seeded with Seed, failures are
// forced via the *Err maps, and procedure behaviour is supplied per test
// through Procedures. Every operation is appended to Calls.
type Fake struct {
	Calls []Call

	InsertErr map[string]error
	BulkErr   map[string]error
	SelectErr map[string]error
	UpdateErr map[string]error
	DeleteErr map[string]error

	// Procedures maps a procedure name to its behaviour. A procedure with
	// no registered behaviour succeeds without touching any table.
	Procedures map[string]func(args map[string]any) error

	tables map[string][]backend.Row
}

func New() *Fake {
	return &Fake{
		InsertErr:  map[string]error{},
		BulkErr:    map[string]error{},
		SelectErr:  map[string]error{},
		UpdateErr:  map[string]error{},
		DeleteErr:  map[string]error{},
		Procedures: map[string]func(args map[string]any) error{},
		tables:     map[string][]backend.Row{},
	}
}

func (f *Fake) Seed(table string, rows ...backend.Row) {
	for _, row := range rows {
		f.tables[table] = append(f.tables[table], cloneRow(row))
	}
}

// Table returns copies of all rows currently in a table.
func (f *Fake) Table(table string) []backend.Row {
	out := make([]backend.Row, 0, len(f.tables[table]))
	for _, row := range f.tables[table] {
		out = append(out, cloneRow(row))
	}
	return out
}

// Writes counts the mutating operations recorded so far.
func (f *Fake) Writes() int {
	n := 0
	for _, c := range f.Calls {
		switch c.Op {
		case "insert", "bulk_insert", "update", "delete", "procedure":
			n++
		}
	}
	return n
}

// CallsTo counts recorded operations of one kind against one target.
func (f *Fake) CallsTo(op, target string) int {
	n := 0
	for _, c := range f.Calls {
		if c.Op == op && c.Target == target {
			n++
		}
	}
	return n
}

// Apply mutates matching rows directly without recording a call. It lets a
// test-registered procedure touch table state the way the real server-side
// function would.
func (f *Fake) Apply(table string, filter backend.Filter, fields backend.Row) {
	for _, row := range f.tables[table] {
		if matches(row, filter) {
			for k, v := range fields {
				row[k] = v
			}
		}
	}
}

func (f *Fake) Insert(ctx context.Context, table string, row backend.Row) (string, error) {
	f.Calls = append(f.Calls, Call{Op: "insert", Target: table})
	if err := f.InsertErr[table]; err != nil {
		return "", err
	}

	stored := cloneRow(row)
	id := stored.String("id")
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
		stored["id"] = id
	}
	f.tables[table] = append(f.tables[table], stored)
	return id, nil
}

func (f *Fake) BulkInsert(ctx context.Context, table string, rows []backend.Row) error {
	f.Calls = append(f.Calls, Call{Op: "bulk_insert", Target: table})
	if err := f.BulkErr[table]; err != nil {
		return err
	}

	for _, row := range rows {
		stored := cloneRow(row)
		if stored.String("id") == "" {
			stored["id"] = uuid.Must(uuid.NewV4()).String()
		}
		f.tables[table] = append(f.tables[table], stored)
	}
	return nil
}

func (f *Fake) Select(ctx context.Context, table string, filter backend.Filter, columns ...string) ([]backend.Row, error) {
	f.Calls = append(f.Calls, Call{Op: "select", Target: table})
	if err := f.SelectErr[table]; err != nil {
		return nil, err
	}

	out := make([]backend.Row, 0)
	for _, row := range f.tables[table] {
		if matches(row, filter) {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

func (f *Fake) Update(ctx context.Context, table string, filter backend.Filter, fields backend.Row) error {
	f.Calls = append(f.Calls, Call{Op: "update", Target: table})
	if err := f.UpdateErr[table]; err != nil {
		return err
	}

	updated := 0
	for _, row := range f.tables[table] {
		if matches(row, filter) {
			for k, v := range fields {
				row[k] = v
			}
			updated++
		}
	}
	if updated == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (f *Fake) Delete(ctx context.Context, table string, filter backend.Filter) error {
	f.Calls = append(f.Calls, Call{Op: "delete", Target: table})
	if err := f.DeleteErr[table]; err != nil {
		return err
	}

	kept := f.tables[table][:0]
	deleted := 0
	for _, row := range f.tables[table] {
		if matches(row, filter) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.tables[table] = kept
	if deleted == 0 {
		return backend.ErrNotFound
	}
	return nil
}

func (f *Fake) CallProcedure(ctx context.Context, name string, args map[string]any) error {
	f.Calls = append(f.Calls, Call{Op: "procedure", Target: name})
	if fn, ok := f.Procedures[name]; ok {
		return fn(args)
	}
	return nil
}

func matches(row backend.Row, filter backend.Filter) bool {
	for k, want := range filter {
		if !equalValue(row[k], want) {
			return false
		}
	}
	return true
}

// equalValue compares loosely across integer widths so a filter built with
// an int matches a row seeded with an int64.
func equalValue(a, b any) bool {
	ai, aok := toInt(a)
	bi, bok := toInt(b)
	if aok && bok {
		return ai == bi
	}
	return a == b
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func cloneRow(row backend.Row) backend.Row {
	out := make(backend.Row, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	return out
}
