package connector_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/datusai/datus-clickhouse/pkg/clickhouse"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/datusai/datus-clickhouse/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type route struct {
	match string
	rows  func(args ...any) (driver.Rows, error)
}

// router answers each query with the first route whose match is a substring
// of the statement.
func router(t *testing.T, routes ...route) func(context.Context, string, ...any) (driver.Rows, error) {
	t.Helper()

	return func(_ context.Context, query string, args ...any) (driver.Rows, error) {
		for _, r := range routes {
			if strings.Contains(query, r.match) {
				return r.rows(args...)
			}
		}
		t.Errorf("unexpected query: %s", query)
		return &testutil.MockRows{}, nil
	}
}

func count(n uint64) func(...any) (driver.Rows, error) {
	return func(...any) (driver.Rows, error) {
		return testutil.Single("count()", "UInt64", n), nil
	}
}

func version(v string) func(...any) (driver.Rows, error) {
	return func(...any) (driver.Rows, error) {
		return testutil.Single("version()", "String", v), nil
	}
}

func fail(err error) func(...any) (driver.Rows, error) {
	return func(...any) (driver.Rows, error) {
		return nil, err
	}
}

func testConfig(t *testing.T) *config.ConnectionConfig {
	t.Helper()

	cfg, err := config.New("localhost", 9000, "default", "", "analytics")
	require.NoError(t, err)
	return cfg
}

func newConnector(t *testing.T, conn *testutil.MockConn) *connector.Connector {
	t.Helper()

	c, err := connector.New(testConfig(t), connector.WithConn(conn))
	require.NoError(t, err)
	return c
}

var _ clickhouse.Conn = (*testutil.MockConn)(nil)
