package result

// Frame is a column-major table: one slice of values per column, all of equal
// length. It is the default query result shape.
type Frame struct {
	Columns []string
	Types   []string
	Data    map[string][]any
}

// Frame converts the result into a column-major Frame.
func (r *QueryResult) Frame() *Frame {
	f := &Frame{
		Columns: r.ColumnNames(),
		Types:   make([]string, len(r.Columns)),
		Data:    make(map[string][]any, len(r.Columns)),
	}

	for j, col := range r.Columns {
		f.Types[j] = col.Type
		values := make([]any, len(r.Rows))
		for i, row := range r.Rows {
			values[i] = row[j]
		}
		f.Data[col.Name] = values
	}

	return f
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Data[f.Columns[0]])
}

// Column returns the values of the named column, or nil if there is none.
func (f *Frame) Column(name string) []any {
	return f.Data[name]
}

// Row returns row i as a record keyed by column name.
func (f *Frame) Row(i int) map[string]any {
	rec := make(map[string]any, len(f.Columns))
	for _, name := range f.Columns {
		rec[name] = f.Data[name][i]
	}
	return rec
}

// Records returns every row as a record. It matches QueryResult.List for the
// same result.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, f.Len())
	for i := range out {
		out[i] = f.Row(i)
	}
	return out
}
