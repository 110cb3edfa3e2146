package result

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// DateTimeLayout matches the text form ClickHouse uses for DateTime values.
// Fractional seconds are printed only when present.
const DateTimeLayout = "2006-01-02 15:04:05.999999999"

// CSV renders the result as comma separated text with a header row. NULL
// values are written as empty fields.
func (r *QueryResult) CSV() (string, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(r.ColumnNames()); err != nil {
		return "", errors.Wrap(err, "failed to write csv header")
	}

	record := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for j, v := range row {
			record[j] = FormatValue(v)
		}
		if err := w.Write(record); err != nil {
			return "", errors.Wrap(err, "failed to write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "failed to flush csv output")
	}

	return buf.String(), nil
}

// FormatValue renders a single scanned value as text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(DateTimeLayout)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	}

	return fmt.Sprint(v)
}
