package connector

import (
	"context"
	"net"
	"syscall"
	"testing"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback Kind
		kind     Kind
		reason   string
		code     int32
	}{
		{
			name:     "authentication failed",
			err:      &ch.Exception{Code: 516, Message: "default: Authentication failed"},
			fallback: KindConnection,
			kind:     KindConnection,
			reason:   ReasonAuth,
			code:     516,
		},
		{
			name:     "wrong password during a query",
			err:      errors.Wrap(&ch.Exception{Code: 193, Message: "Wrong password"}, "failed to query"),
			fallback: KindQuery,
			kind:     KindConnection,
			reason:   ReasonAuth,
			code:     193,
		},
		{
			name:     "connection refused",
			err:      &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			fallback: KindConnection,
			kind:     KindConnection,
			reason:   ReasonUnreachable,
		},
		{
			name:     "acquire timeout",
			err:      ch.ErrAcquireConnTimeout,
			fallback: KindQuery,
			kind:     KindConnection,
			reason:   ReasonUnreachable,
		},
		{
			name:     "deadline exceeded",
			err:      errors.Wrap(context.DeadlineExceeded, "read"),
			fallback: KindIntrospection,
			kind:     KindConnection,
			reason:   ReasonUnreachable,
		},
		{
			name:     "syntax error",
			err:      &ch.Exception{Code: 62, Message: "Syntax error: failed at position 1 (SELEKT)"},
			fallback: KindQuery,
			kind:     KindQuery,
			code:     62,
		},
		{
			name:     "syntax error during introspection",
			err:      &ch.Exception{Code: 62, Message: "Syntax error"},
			fallback: KindIntrospection,
			kind:     KindQuery,
			code:     62,
		},
		{
			name:     "unknown table in a query",
			err:      &ch.Exception{Code: 60, Message: "Table default.missing does not exist"},
			fallback: KindQuery,
			kind:     KindNotFound,
			code:     60,
		},
		{
			name:     "unknown database during introspection",
			err:      &ch.Exception{Code: 81, Message: "Database missing does not exist"},
			fallback: KindIntrospection,
			kind:     KindIntrospection,
			code:     81,
		},
		{
			name:     "http syntax error",
			err:      errors.New("clickhouse [execute]:: 400 code: Code: 62. DB::Exception: Syntax error"),
			fallback: KindQuery,
			kind:     KindQuery,
			code:     62,
		},
		{
			name:     "http authentication failure",
			err:      errors.New("sendQuery: [HTTP 516] response body: \"Code: 516. DB::Exception: default: Authentication failed\""),
			fallback: KindConnection,
			kind:     KindConnection,
			reason:   ReasonAuth,
			code:     516,
		},
		{
			name:     "other server exception",
			err:      &ch.Exception{Code: 241, Message: "Memory limit exceeded"},
			fallback: KindQuery,
			kind:     KindQuery,
			code:     241,
		},
		{
			name:     "configuration error",
			err:      &config.ConfigurationError{Field: "host", Reason: "is required"},
			fallback: KindConnection,
			kind:     KindConfiguration,
		},
		{
			name:     "unclassified connection failure",
			err:      errors.New("handshake: unexpected packet"),
			fallback: KindConnection,
			kind:     KindConnection,
			reason:   ReasonUnknown,
		},
		{
			name:     "unclassified query failure",
			err:      errors.New("unexpected packet"),
			fallback: KindQuery,
			kind:     KindQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", "target", tt.err, tt.fallback)

			var ce *Error
			require.True(t, errors.As(err, &ce))
			require.Equal(t, tt.kind, ce.Kind)
			require.Equal(t, tt.reason, ce.Reason)
			require.Equal(t, tt.code, ce.Code)
			require.ErrorIs(t, err, tt.kind.sentinel())
			require.Same(t, tt.err, ce.Err)
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	require.NoError(t, classify("op", "", nil, KindQuery))

	orig := newError(KindNotFound, "get_schema", "db.t", errors.New("missing"))
	err := classify("query", "", errors.Wrap(orig, "outer"), KindQuery)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestError(t *testing.T) {
	exc := &ch.Exception{Code: 62, Message: "Syntax error"}
	err := classify("execute_query", "SELEKT 1", exc, KindQuery)

	require.EqualError(t, err, "clickhouse execute_query SELEKT 1: query error: code: 62, message: Syntax error")
	require.ErrorIs(t, err, ErrQuery)
	require.NotErrorIs(t, err, ErrConnection)

	var got *ch.Exception
	require.True(t, errors.As(err, &got), "server exception must stay reachable")
	require.Equal(t, "Syntax error", got.Message)

	auth := &Error{Kind: KindConnection, Op: "test_connection", Reason: ReasonAuth, Err: errors.New("denied")}
	require.EqualError(t, auth, "clickhouse test_connection: connection error (auth): denied")
}

func TestKindOf(t *testing.T) {
	require.Equal(t, Kind(0), KindOf(errors.New("plain")))
	require.Equal(t, Kind(0), KindOf(nil))
	require.Equal(t, KindIntrospection, KindOf(errors.Wrap(newError(KindIntrospection, "op", "", nil), "ctx")))
	require.Equal(t, "not found", KindNotFound.String())
	require.Equal(t, "unknown error", Kind(42).String())
}
