package connector

import (
	"context"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/pkg/errors"
)

const (
	KindConfiguration Kind = iota + 1
	KindConnection
	KindQuery
	KindIntrospection
	KindNotFound
)

const (
	// ReasonAuth marks a ConnectionError caused by rejected credentials
	ReasonAuth = "auth"

	// ReasonUnreachable marks a ConnectionError caused by the network
	ReasonUnreachable = "unreachable"

	// ReasonUnknown marks a ConnectionError with no clearer cause
	ReasonUnknown = "unknown"
)

// Server error codes the connector branches on.
const (
	codeUnknownTable         = 60
	codeSyntaxError          = 62
	codeUnknownDatabase      = 81
	codeUnknownUser          = 192
	codeWrongPassword        = 193
	codeRequiredPassword     = 194
	codeAuthenticationFailed = 516
)

var codePattern = regexp.MustCompile(`(?i)\bcode:\s*(\d+)`)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrQuery         = errors.New("query error")
	ErrIntrospection = errors.New("introspection error")
	ErrNotFound      = errors.New("not found")
)

type (
	// Kind is the category of a connector failure.
	Kind int

	// Error is returned by every Connector operation. Callers branch on Kind,
	// either directly through errors.As or with errors.Is against one of the
	// Err* sentinels.
	//
	// The server's message and error code are preserved: Err is the original
	// driver error and Code the ClickHouse exception code, if any.
	Error struct {
		Kind   Kind
		Op     string
		Target string
		Code   int32
		Reason string
		Err    error
	}
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindConnection:
		return "connection error"
	case KindQuery:
		return "query error"
	case KindIntrospection:
		return "introspection error"
	case KindNotFound:
		return "not found"
	}
	return "unknown error"
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindConnection:
		return ErrConnection
	case KindQuery:
		return ErrQuery
	case KindIntrospection:
		return ErrIntrospection
	case KindNotFound:
		return ErrNotFound
	}
	return nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("clickhouse ")
	b.WriteString(e.Op)
	if e.Target != "" {
		b.WriteString(" ")
		b.WriteString(e.Target)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Reason != "" {
		b.WriteString(" (" + e.Reason + ")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of err, or 0 when err is not a connector Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newError(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

// classify maps a driver error onto the connector taxonomy. fallback is the
// Kind used for server exceptions without a more specific mapping.
func classify(op, target string, err error, fallback Kind) error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return err
	}

	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return newError(KindConfiguration, op, target, err)
	}

	if code, ok := exceptionCode(err); ok {
		e := newError(fallback, op, target, err)
		e.Code = code

		switch code {
		case codeAuthenticationFailed, codeUnknownUser, codeWrongPassword, codeRequiredPassword:
			e.Kind = KindConnection
			e.Reason = ReasonAuth
		case codeUnknownTable, codeUnknownDatabase:
			if fallback == KindQuery {
				e.Kind = KindNotFound
			}
		case codeSyntaxError:
			e.Kind = KindQuery
		}
		return e
	}

	if isNetworkError(err) {
		e := newError(KindConnection, op, target, err)
		e.Reason = ReasonUnreachable
		return e
	}

	if fallback == KindConnection {
		e := newError(KindConnection, op, target, err)
		e.Reason = ReasonUnknown
		return e
	}

	return newError(fallback, op, target, err)
}

// exceptionCode extracts the server error code. Native protocol errors carry a
// typed exception; over HTTP only the message text "Code: N" is available.
func exceptionCode(err error) (int32, bool) {
	var exc *ch.Exception
	if errors.As(err, &exc) {
		return exc.Code, true
	}

	m := codePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}

	code, convErr := strconv.ParseInt(m[1], 10, 32)
	if convErr != nil {
		return 0, false
	}
	return int32(code), true
}

func isNetworkError(err error) bool {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EHOSTUNREACH):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, ch.ErrAcquireConnTimeout), errors.Is(err, ch.ErrAcquireConnNoAddress):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
