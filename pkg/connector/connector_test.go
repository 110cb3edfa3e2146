package connector_test

import (
	"context"
	"net"
	"syscall"
	"testing"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/datusai/datus-clickhouse/pkg/clickhouse"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/datusai/datus-clickhouse/pkg/registry"
	"github.com/datusai/datus-clickhouse/pkg/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := connector.New(nil)
		require.ErrorIs(t, err, connector.ErrConfiguration)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := connector.New(&config.ConnectionConfig{Port: 9000, Username: "default", Database: "default"})
		require.ErrorIs(t, err, connector.ErrConfiguration)
		require.ErrorContains(t, err, "host")
	})

	t.Run("opener failure", func(t *testing.T) {
		_, err := connector.New(testConfig(t), connector.WithOpener(func(*config.ConnectionConfig) (clickhouse.Conn, error) {
			return nil, errors.New("no pool")
		}))
		require.ErrorIs(t, err, connector.ErrConnection)
	})

	t.Run("opens with the configuration", func(t *testing.T) {
		var opened *config.ConnectionConfig
		conn := &testutil.MockConn{}

		c, err := connector.New(testConfig(t), connector.WithOpener(func(cfg *config.ConnectionConfig) (clickhouse.Conn, error) {
			opened = cfg
			return conn, nil
		}))
		require.NoError(t, err)
		require.Equal(t, "analytics", opened.Database)
		require.Equal(t, "analytics", c.Database())
		require.Equal(t, "localhost:9000", c.Config().Addr())

		require.NoError(t, c.Close())
		require.True(t, conn.Closed)
	})
}

func TestFromMap(t *testing.T) {
	conn := &testutil.MockConn{}

	c, err := connector.FromMap(map[string]any{
		"type":     "clickhouse",
		"host":     "ch.internal",
		"port":     9440,
		"username": "reader",
		"password": "secret",
		"database": "warehouse",
	}, connector.WithConn(conn))
	require.NoError(t, err)
	require.Equal(t, "warehouse", c.Database())
	require.Equal(t, "ch.internal:9440", c.Config().Addr())

	_, err = connector.FromMap(map[string]any{"port": 9000}, connector.WithConn(conn))
	require.ErrorIs(t, err, connector.ErrConfiguration)

	_, err = connector.FromMap(nil)
	require.ErrorIs(t, err, connector.ErrConfiguration)
}

func TestTestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		conn := &testutil.MockConn{
			QueryFunc: router(t, route{"SELECT 1", func(...any) (driver.Rows, error) {
				return testutil.Single("1", "UInt8", uint8(1)), nil
			}}),
		}

		require.NoError(t, newConnector(t, conn).TestConnection(context.Background()))
		require.Equal(t, []string{"SELECT 1"}, conn.Queries)
	})

	tests := []struct {
		name   string
		ping   error
		reason string
	}{
		{
			name:   "bad credentials",
			ping:   &ch.Exception{Code: 516, Message: "default: Authentication failed: password is incorrect"},
			reason: connector.ReasonAuth,
		},
		{
			name:   "unreachable host",
			ping:   &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			reason: connector.ReasonUnreachable,
		},
		{
			name:   "unknown",
			ping:   errors.New("unexpected packet"),
			reason: connector.ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &testutil.MockConn{
				PingFunc: func(context.Context) error { return tt.ping },
			}

			err := newConnector(t, conn).TestConnection(context.Background())
			require.ErrorIs(t, err, connector.ErrConnection)

			var ce *connector.Error
			require.True(t, errors.As(err, &ce))
			require.Equal(t, tt.reason, ce.Reason)
			require.Equal(t, "test_connection", ce.Op)
			require.Empty(t, conn.Queries)
		})
	}

	t.Run("query failure", func(t *testing.T) {
		conn := &testutil.MockConn{
			QueryFunc: router(t, route{"SELECT 1", fail(&ch.Exception{Code: 194, Message: "password required"})}),
		}

		err := newConnector(t, conn).TestConnection(context.Background())
		require.ErrorIs(t, err, connector.ErrConnection)
	})
}

func TestSwitchContext(t *testing.T) {
	exists := func(name string) func(...any) (driver.Rows, error) {
		return func(args ...any) (driver.Rows, error) {
			if args[0] == name {
				return testutil.Single("count()", "UInt64", uint64(1)), nil
			}
			return testutil.Single("count()", "UInt64", uint64(0)), nil
		}
	}

	t.Run("reopens against the new database", func(t *testing.T) {
		first := &testutil.MockConn{}
		first.QueryFunc = router(t, route{"system.databases", exists("staging")})
		second := &testutil.MockConn{}

		var opened []string
		conns := []*testutil.MockConn{first, second}
		c, err := connector.New(testConfig(t), connector.WithOpener(func(cfg *config.ConnectionConfig) (clickhouse.Conn, error) {
			opened = append(opened, cfg.Database)
			conn := conns[0]
			conns = conns[1:]
			return conn, nil
		}))
		require.NoError(t, err)

		require.NoError(t, c.SwitchContext(context.Background(), "staging"))
		require.Equal(t, []string{"analytics", "staging"}, opened)
		require.Equal(t, "staging", c.Database())
		require.Equal(t, "staging", c.Config().Database)
		require.True(t, first.Closed)
		require.False(t, second.Closed)
	})

	t.Run("shared connection only changes the default", func(t *testing.T) {
		conn := &testutil.MockConn{QueryFunc: router(t, route{"system.databases", exists("staging")})}
		c := newConnector(t, conn)

		require.NoError(t, c.SwitchContext(context.Background(), "staging"))
		require.Equal(t, "staging", c.Database())
		require.False(t, conn.Closed)
	})

	t.Run("same database is a no-op", func(t *testing.T) {
		conn := &testutil.MockConn{}
		require.NoError(t, newConnector(t, conn).SwitchContext(context.Background(), "analytics"))
		require.Empty(t, conn.Queries)
	})

	t.Run("missing database", func(t *testing.T) {
		conn := &testutil.MockConn{QueryFunc: router(t, route{"system.databases", count(0)})}
		c := newConnector(t, conn)

		err := c.SwitchContext(context.Background(), "nope")
		require.ErrorIs(t, err, connector.ErrIntrospection)
		require.Equal(t, "analytics", c.Database())
	})

	t.Run("empty database", func(t *testing.T) {
		err := newConnector(t, &testutil.MockConn{}).SwitchContext(context.Background(), "")
		require.ErrorIs(t, err, connector.ErrConfiguration)
	})
}

func TestNames(t *testing.T) {
	c := newConnector(t, &testutil.MockConn{})

	require.Equal(t, "`mydb`.`mytable`", c.FullName("mydb", "mytable"))
	require.Equal(t, "`mytable`", c.FullName("", "mytable"))
	require.Equal(t, "`my``db`.`t`", c.FullName("my`db", "t"))
	require.Equal(t, "mydb.mytable", c.Identifier("mydb", "mytable"))
	require.Equal(t, "mytable", c.Identifier("", "mytable"))
}

func TestRegister(t *testing.T) {
	reg := registry.NewRegistry()
	connector.Register(reg)

	require.True(t, reg.IsRegistered("clickhouse"))
	require.Equal(t, []string{"clickhouse"}, reg.List())

	conn, err := reg.New("clickhouse", map[string]any{"host": "localhost", "port": 9000}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c, ok := conn.(*connector.Connector)
	require.True(t, ok)
	require.Equal(t, "default", c.Database())

	_, err = reg.New("clickhouse", map[string]any{"port": "not a port"}, nil)
	require.ErrorIs(t, err, connector.ErrConfiguration)

	missingHost, err := reg.New("clickhouse", map[string]any{"port": 9000}, nil)
	require.ErrorIs(t, err, connector.ErrConfiguration)
	require.Nil(t, missingHost)
}
