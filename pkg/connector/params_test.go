package connector

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/require"
)

func TestEncodeParams(t *testing.T) {
	name := "carol"
	var missing *string

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: `\N`},
		{name: "nil pointer", value: missing, want: `\N`},
		{name: "pointer", value: &name, want: "carol"},
		{name: "string", value: "it's", want: "it's"},
		{name: "escaped string", value: "a\\b\tc\nd", want: `a\\b\tc\nd`},
		{name: "int", value: 42, want: "42"},
		{name: "uint", value: uint32(7), want: "7"},
		{name: "float", value: 0.5, want: "0.5"},
		{name: "bool", value: true, want: "1"},
		{name: "time", value: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), want: "2024-05-01 12:30:00"},
		{name: "int slice", value: []uint32{1, 2}, want: "[1, 2]"},
		{name: "empty slice", value: []int{}, want: "[]"},
		{name: "string slice", value: []string{"a", "it's"}, want: `['a', 'it\'s']`},
		{name: "nested", value: [][]any{{1, nil}, {"x"}}, want: "[[1, NULL], ['x']]"},
		{name: "map", value: map[string]int{"b": 2, "a": 1}, want: "{'a': 1, 'b': 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := encodeParams(map[string]any{"p": tt.value})
			require.NoError(t, err)
			require.Equal(t, ch.Parameters{"p": tt.want}, params)
		})
	}
}

func TestEncodeParams_Unsupported(t *testing.T) {
	_, err := encodeParams(map[string]any{"fn": func() {}})
	require.ErrorContains(t, err, "parameter fn: unsupported parameter value of type func()")
}
