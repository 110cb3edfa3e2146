package result

import (
	"reflect"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/datusai/datus-clickhouse/pkg/parser"
	"github.com/pkg/errors"
)

const (
	// FormatFrame is a column-major table, the default output format
	FormatFrame OutputFormat = "frame"

	// FormatPandas is accepted as an alias of FormatFrame
	FormatPandas OutputFormat = "pandas"

	// FormatArrow is an Arrow record batch
	FormatArrow OutputFormat = "arrow"

	// FormatCSV is delimited text with a header row
	FormatCSV OutputFormat = "csv"

	// FormatList is a list of records keyed by column name
	FormatList OutputFormat = "list"
)

type (
	// OutputFormat selects how a QueryResult is shaped for the caller.
	OutputFormat string

	// Column describes a single result column.
	Column struct {
		Name     string
		Type     string
		Nullable bool
	}

	// QueryResult is the tabular outcome of a query. It is built fresh for every
	// call and conversions never modify Rows.
	QueryResult struct {
		Columns []Column
		Rows    [][]any
	}

	// ExecuteResult reports the outcome of a statement run through one of the
	// connector's Execute helpers.
	ExecuteResult struct {
		Success  bool         `json:"success"`
		Error    string       `json:"error,omitempty"`
		SQLQuery string       `json:"sql_query"`
		RowCount int64        `json:"row_count"`
		Return   any          `json:"sql_return,omitempty"`
		Format   OutputFormat `json:"result_format"`
	}
)

// Formats lists the canonical output format names.
var Formats = []OutputFormat{FormatFrame, FormatArrow, FormatCSV, FormatList}

// ParseFormat normalizes a format name. The empty string selects FormatFrame
// and "pandas" is folded into FormatFrame.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatFrame, FormatPandas:
		return FormatFrame, nil
	case FormatArrow, FormatCSV, FormatList:
		return f, nil
	}

	return "", errors.Errorf("unsupported output format %q (expected one of frame, pandas, arrow, csv, list)", name)
}

// Scan drains rows into a QueryResult. Column nullability comes from the driver
// and from the declared type, so LowCardinality(Nullable(T)) is reported as
// nullable. Values are stored dereferenced: NULL becomes nil.
func Scan(rows driver.Rows) (*QueryResult, error) {
	types := rows.ColumnTypes()

	res := &QueryResult{
		Columns: make([]Column, len(types)),
		Rows:    [][]any{},
	}
	for i, ct := range types {
		res.Columns[i] = Column{
			Name:     ct.Name(),
			Type:     ct.DatabaseTypeName(),
			Nullable: ct.Nullable(),
		}
		if dt, err := parser.ParseType(ct.DatabaseTypeName()); err == nil && dt.IsNullable() {
			res.Columns[i].Nullable = true
		}
	}

	for rows.Next() {
		dest := make([]any, len(types))
		for i, ct := range types {
			if st := ct.ScanType(); st != nil {
				dest[i] = reflect.New(st).Interface()
				continue
			}
			dest[i] = new(any)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(err, "failed to scan result row")
		}

		row := make([]any, len(dest))
		for i, d := range dest {
			row[i] = deref(d)
		}
		res.Rows = append(res.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating result rows")
	}

	return res, nil
}

// ColumnNames returns the column names in result order.
func (r *QueryResult) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of rows.
func (r *QueryResult) Len() int {
	return len(r.Rows)
}

// List returns the rows as records keyed by column name. When a column name
// repeats, the rightmost value wins.
func (r *QueryResult) List() []map[string]any {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			rec[col.Name] = row[j]
		}
		out[i] = rec
	}
	return out
}

// Format shapes the result for f. Arrow records are allocated with
// memory.DefaultAllocator and must be released by the caller.
//
// The returned value is a *Frame, an arrow.Record, a CSV string or a
// []map[string]any depending on f.
func (r *QueryResult) Format(f OutputFormat) (any, error) {
	f, err := ParseFormat(string(f))
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatArrow:
		return r.Arrow(memory.DefaultAllocator)
	case FormatCSV:
		return r.CSV()
	case FormatList:
		return r.List(), nil
	default:
		return r.Frame(), nil
	}
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
