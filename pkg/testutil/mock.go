package testutil

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pkg/errors"
)

type (
	// MockConn is an in-memory stand-in for a ClickHouse connection. Each call is
	// recorded; QueryFunc, ExecFunc and PingFunc override the default behaviour
	// (empty result sets, successful execs and pings).
	MockConn struct {
		QueryFunc func(ctx context.Context, query string, args ...any) (driver.Rows, error)
		ExecFunc  func(ctx context.Context, query string, args ...any) error
		PingFunc  func(ctx context.Context) error

		mu      sync.Mutex
		Queries []string
		Execs   []string
		Args    [][]any
		Closed  bool
	}

	// MockColumn describes one column of a MockRows result set.
	MockColumn struct {
		Name     string
		DBType   string
		Scan     reflect.Type
		Nullable bool
	}

	// MockRows implements driver.Rows over a fixed set of values.
	MockRows struct {
		Cols   []MockColumn
		Data   [][]any
		ErrVal error

		idx    int
		closed bool
	}

	mockColumnType struct {
		col MockColumn
	}
)

// Query records the statement and delegates to QueryFunc.
func (m *MockConn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	m.record(query, args, false)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, args...)
	}
	return &MockRows{}, nil
}

// Exec records the statement and delegates to ExecFunc.
func (m *MockConn) Exec(ctx context.Context, query string, args ...any) error {
	m.record(query, args, true)
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, query, args...)
	}
	return nil
}

// Ping delegates to PingFunc.
func (m *MockConn) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close marks the connection as closed.
func (m *MockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// LastExec returns the most recent Exec statement, or "" when there is none.
func (m *MockConn) LastExec() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Execs) == 0 {
		return ""
	}
	return m.Execs[len(m.Execs)-1]
}

func (m *MockConn) record(query string, args []any, exec bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exec {
		m.Execs = append(m.Execs, query)
	} else {
		m.Queries = append(m.Queries, query)
	}
	m.Args = append(m.Args, args)
}

// Col builds a MockColumn whose scan type is inferred from sample. Wrapping
// types in Nullable(...) marks the column nullable and makes the scan type a
// pointer, as the driver does.
func Col(name, dbType string, sample any) MockColumn {
	scan := reflect.TypeOf(sample)
	nullable := strings.HasPrefix(dbType, "Nullable(")
	if nullable && scan.Kind() != reflect.Pointer {
		scan = reflect.PointerTo(scan)
	}

	return MockColumn{Name: name, DBType: dbType, Scan: scan, Nullable: nullable}
}

// Rows returns a MockRows for the given columns and values.
func Rows(cols []MockColumn, data ...[]any) *MockRows {
	return &MockRows{Cols: cols, Data: data}
}

// Single returns a one-column, one-row result holding v.
func Single(name, dbType string, v any) *MockRows {
	return Rows([]MockColumn{Col(name, dbType, v)}, []any{v})
}

func (r *MockRows) Next() bool {
	if r.closed || r.idx >= len(r.Data) {
		return false
	}
	r.idx++
	return true
}

func (r *MockRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.Data) {
		return errors.New("scan called without a current row")
	}

	row := r.Data[r.idx-1]
	if len(dest) != len(row) {
		return errors.Errorf("expected %d destination arguments in Scan, not %d", len(row), len(dest))
	}

	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return errors.Errorf("destination %d must be a non-nil pointer", i)
		}
		if err := assign(target.Elem(), row[i]); err != nil {
			return errors.Wrapf(err, "column %d", i)
		}
	}

	return nil
}

func (r *MockRows) ScanStruct(any) error {
	return errors.New("ScanStruct is not supported by MockRows")
}

func (r *MockRows) ColumnTypes() []driver.ColumnType {
	types := make([]driver.ColumnType, len(r.Cols))
	for i, col := range r.Cols {
		types[i] = mockColumnType{col: col}
	}
	return types
}

func (r *MockRows) Totals(...any) error {
	return nil
}

func (r *MockRows) Columns() []string {
	names := make([]string, len(r.Cols))
	for i, col := range r.Cols {
		names[i] = col.Name
	}
	return names
}

func (r *MockRows) Close() error {
	r.closed = true
	return nil
}

func (r *MockRows) Err() error {
	return r.ErrVal
}

func (c mockColumnType) Name() string             { return c.col.Name }
func (c mockColumnType) Nullable() bool           { return c.col.Nullable }
func (c mockColumnType) ScanType() reflect.Type   { return c.col.Scan }
func (c mockColumnType) DatabaseTypeName() string { return c.col.DBType }

func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(v)
	switch {
	case dst.Kind() == reflect.Interface:
		dst.Set(src)
		return nil
	case dst.Kind() == reflect.Pointer && src.Kind() != reflect.Pointer:
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
		return nil
	case dst.Kind() == reflect.String && src.Kind() != reflect.String:
		return errors.Errorf("cannot scan %T into %s", v, dst.Type())
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	return errors.Errorf("cannot scan %T into %s", v, dst.Type())
}
