package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

func renderTable(w io.Writer, cols []string, rows [][]any) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = formatCell(v)
		}
		t.AppendRow(r)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func renderFrame(w io.Writer, f *result.Frame) {
	rows := make([][]any, f.Len())
	for i := range rows {
		row := make([]any, len(f.Columns))
		for j, col := range f.Columns {
			row[j] = f.Data[col][i]
		}
		rows[i] = row
	}
	renderTable(w, f.Columns, rows)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderArrow(w io.Writer, rec arrow.Record) {
	defer rec.Release()

	_, _ = fmt.Fprintln(w, rec.Schema().String())
	for i, col := range rec.Columns() {
		_, _ = fmt.Fprintf(w, "%s: %s\n", rec.ColumnName(i), col.String())
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", rec.NumRows())
}

// renderValue prints the output of ExecuteQuery or Execute.
func renderValue(w io.Writer, v any) error {
	switch out := v.(type) {
	case *result.Frame:
		renderFrame(w, out)
	case []map[string]any:
		return renderJSON(w, out)
	case string:
		_, err := io.WriteString(w, out)
		return err
	case arrow.Record:
		renderArrow(w, out)
	default:
		return errors.Errorf("cannot render %T", v)
	}
	return nil
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return result.FormatValue(v)
}
