package connector

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/datusai/datus-clickhouse/pkg/utils"
	"github.com/pkg/errors"
)

// nullParam is the text ClickHouse reads as NULL in a parameter value.
const nullParam = `\N`

var escapedReplacer = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`)

// encodeParams renders server side query parameters in the escaped text
// format ClickHouse parses {name:Type} values with.
//
// Example:
//
//	encodeParams(map[string]any{"ids": []uint32{1, 2}, "name": nil})
//	// ids: [1, 2], name: \N
func encodeParams(params map[string]any) (ch.Parameters, error) {
	named := make(ch.Parameters, len(params))
	for name, v := range params {
		text, err := encodeParam(v)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", name)
		}
		named[name] = text
	}
	return named, nil
}

func encodeParam(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return nullParam, nil
	case string:
		return escapedReplacer.Replace(val), nil
	case []byte:
		return escapedReplacer.Replace(string(val)), nil
	}

	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nullParam, nil
		}
		return encodeParam(rv.Elem().Interface())
	}
	return encodeLiteral(v, false)
}

// encodeLiteral renders v as it appears inside a parameter. Strings are only
// quoted when nested in an array, map or tuple.
func encodeLiteral(v any, nested bool) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		if nested {
			return utils.Escape(val), nil
		}
		return val, nil
	case []byte:
		return encodeLiteral(string(val), nested)
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		s := val.Format(result.DateTimeLayout)
		if nested {
			return utils.Escape(s), nil
		}
		return s, nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return encodeLiteral(rv.Elem().Interface(), nested)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.String:
		return encodeLiteral(rv.String(), nested)
	case reflect.Slice, reflect.Array:
		items := make([]string, rv.Len())
		for i := range items {
			s, err := encodeLiteral(rv.Index(i).Interface(), true)
			if err != nil {
				return "", err
			}
			items[i] = s
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case reflect.Map:
		keys := rv.MapKeys()
		entries := make([]string, 0, len(keys))
		for _, key := range keys {
			k, err := encodeLiteral(key.Interface(), true)
			if err != nil {
				return "", err
			}
			e, err := encodeLiteral(rv.MapIndex(key).Interface(), true)
			if err != nil {
				return "", err
			}
			entries = append(entries, k+": "+e)
		}
		sort.Strings(entries)
		return "{" + strings.Join(entries, ", ") + "}", nil
	}

	if s, ok := v.(interface{ String() string }); ok {
		return encodeLiteral(s.String(), nested)
	}
	return "", errors.Errorf("unsupported parameter value of type %T", v)
}
