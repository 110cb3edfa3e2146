package result

import (
	"reflect"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/datusai/datus-clickhouse/pkg/parser"
	"github.com/pkg/errors"
)

// Schema returns the Arrow schema for the result columns.
//
// Signed integers map to Int64, unsigned integers to Uint64, floats to
// Float64, Bool to Boolean and Date/DateTime variants to Timestamp(us, UTC).
// Every other type, including wide integers, decimals and composite types, is
// carried as String.
func (r *QueryResult) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(r.Columns))
	for i, col := range r.Columns {
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     arrowType(col.Type),
			Nullable: col.Nullable,
		}
	}
	return arrow.NewSchema(fields, nil)
}

// Arrow converts the result into a single Arrow record batch. The caller owns
// the record and must call Release on it.
func (r *QueryResult) Arrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	b := array.NewRecordBuilder(mem, r.Schema())
	defer b.Release()

	b.Reserve(len(r.Rows))
	for j, col := range r.Columns {
		fb := b.Field(j)
		for i, row := range r.Rows {
			if err := appendValue(fb, row[j]); err != nil {
				return nil, errors.Wrapf(err, "column %s row %d", col.Name, i)
			}
		}
	}

	return b.NewRecord(), nil
}

func arrowType(typ string) arrow.DataType {
	dt, err := parser.ParseType(typ)
	if err != nil {
		return arrow.BinaryTypes.String
	}

	switch dt.Category() {
	case parser.CategoryInt:
		return arrow.PrimitiveTypes.Int64
	case parser.CategoryUint:
		return arrow.PrimitiveTypes.Uint64
	case parser.CategoryFloat:
		return arrow.PrimitiveTypes.Float64
	case parser.CategoryBool:
		return arrow.FixedWidthTypes.Boolean
	case parser.CategoryTime:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	rv := reflect.ValueOf(v)
	switch fb := b.(type) {
	case *array.Int64Builder:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fb.Append(rv.Int())
			return nil
		}
	case *array.Uint64Builder:
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fb.Append(rv.Uint())
			return nil
		}
	case *array.Float64Builder:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			fb.Append(rv.Float())
			return nil
		}
	case *array.BooleanBuilder:
		if rv.Kind() == reflect.Bool {
			fb.Append(rv.Bool())
			return nil
		}
	case *array.TimestampBuilder:
		if t, ok := v.(time.Time); ok {
			fb.Append(arrow.Timestamp(t.UnixMicro()))
			return nil
		}
	case *array.StringBuilder:
		fb.Append(FormatValue(v))
		return nil
	}

	return errors.Errorf("cannot append %T to %s", v, b.Type())
}
