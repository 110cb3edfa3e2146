package connector_test

import (
	"context"
	"testing"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/datusai/datus-clickhouse/pkg/testutil"
	"github.com/stretchr/testify/require"
)

var tableCols = []testutil.MockColumn{
	testutil.Col("database", "String", ""),
	testutil.Col("name", "String", ""),
	testutil.Col("engine", "String", ""),
	testutil.Col("create_table_query", "String", ""),
}

func tables(rows ...[]any) func(...any) (driver.Rows, error) {
	return func(...any) (driver.Rows, error) {
		return testutil.Rows(tableCols, rows...), nil
	}
}

func TestGetDatabases(t *testing.T) {
	cols := []testutil.MockColumn{
		testutil.Col("name", "String", ""),
		testutil.Col("engine", "String", ""),
		testutil.Col("comment", "String", ""),
	}
	conn := &testutil.MockConn{
		QueryFunc: router(t, route{"system.databases", func(...any) (driver.Rows, error) {
			return testutil.Rows(cols,
				[]any{"analytics", "Atomic", ""},
				[]any{"staging", "Atomic", ""},
			), nil
		}}),
	}

	dbs, err := newConnector(t, conn).GetDatabases(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"analytics", "staging"}, dbs)

	failing := &testutil.MockConn{
		QueryFunc: router(t, route{"system.databases", fail(&ch.Exception{Code: 497, Message: "Not enough privileges"})}),
	}
	_, err = newConnector(t, failing).GetDatabases(context.Background(), true)
	require.ErrorIs(t, err, connector.ErrIntrospection)
}

func TestGetTables(t *testing.T) {
	t.Run("current database", func(t *testing.T) {
		var listed []any
		conn := &testutil.MockConn{
			QueryFunc: router(t,
				route{"system.databases", count(1)},
				route{"system.tables", func(args ...any) (driver.Rows, error) {
					listed = args
					return tables(
						[]any{"analytics", "events", "MergeTree", "CREATE TABLE analytics.events (id UInt64) ENGINE = MergeTree ORDER BY id"},
						[]any{"analytics", "users", "ReplacingMergeTree", "CREATE TABLE analytics.users (id UInt64) ENGINE = ReplacingMergeTree ORDER BY id"},
					)()
				}},
			),
		}

		names, err := newConnector(t, conn).GetTables(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, []string{"events", "users"}, names)
		require.Equal(t, []any{"analytics"}, listed)
		require.Contains(t, conn.Queries[1], "engine NOT IN ('View', 'MaterializedView')")
	})

	t.Run("missing database", func(t *testing.T) {
		conn := &testutil.MockConn{QueryFunc: router(t, route{"system.databases", count(0)})}

		_, err := newConnector(t, conn).GetTables(context.Background(), "nope")
		require.ErrorIs(t, err, connector.ErrIntrospection)
		require.Equal(t, connector.KindIntrospection, connector.KindOf(err))
		require.Len(t, conn.Queries, 1)
	})

	t.Run("empty database", func(t *testing.T) {
		conn := &testutil.MockConn{
			QueryFunc: router(t,
				route{"system.databases", count(1)},
				route{"system.tables", tables()},
			),
		}

		names, err := newConnector(t, conn).GetTables(context.Background(), "empty")
		require.NoError(t, err)
		require.Empty(t, names)
	})
}

func TestGetViews(t *testing.T) {
	conn := &testutil.MockConn{
		QueryFunc: router(t,
			route{"system.databases", count(1)},
			route{"engine = 'View'", tables([]any{"analytics", "active_users", "View", "CREATE VIEW analytics.active_users AS SELECT 1"})},
			route{"engine = 'MaterializedView'", tables([]any{"analytics", "daily", "MaterializedView", "CREATE MATERIALIZED VIEW analytics.daily TO analytics.totals AS SELECT 1"})},
		),
	}
	c := newConnector(t, conn)

	views, err := c.GetViews(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"active_users"}, views)

	mvs, err := c.GetMaterializedViews(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []string{"daily"}, mvs)
}

func TestGetViewsWithDDL(t *testing.T) {
	conn := &testutil.MockConn{
		QueryFunc: router(t,
			route{"system.databases", count(1)},
			route{"system.tables", func(...any) (driver.Rows, error) {
				return testutil.Rows(tableCols,
					[]any{"analytics", "active_users", "View", "CREATE VIEW analytics.active_users AS SELECT 1"},
					[]any{"analytics", "daily", "MaterializedView", "CREATE MATERIALIZED VIEW analytics.daily TO analytics.totals AS SELECT 1"},
				), nil
			}},
		),
	}

	views, err := newConnector(t, conn).GetViewsWithDDL(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, []connector.TableInfo{
		{
			Identifier:   "analytics.active_users",
			DatabaseName: "analytics",
			TableName:    "active_users",
			TableType:    "view",
			Definition:   "CREATE VIEW analytics.active_users AS SELECT 1;",
		},
		{
			Identifier:   "analytics.daily",
			DatabaseName: "analytics",
			TableName:    "daily",
			TableType:    "mv",
			Definition:   "CREATE MATERIALIZED VIEW analytics.daily TO analytics.totals AS SELECT 1;",
		},
	}, views)
	require.Contains(t, conn.Queries[1], "(engine = 'View' OR engine = 'MaterializedView')")
}

func TestGetTablesWithDDL(t *testing.T) {
	conn := &testutil.MockConn{
		QueryFunc: router(t,
			route{"system.databases", count(1)},
			route{"system.tables", func(...any) (driver.Rows, error) {
				return testutil.Rows(tableCols,
					[]any{"analytics", "events", "MergeTree", "CREATE TABLE analytics.events (id UInt64) ENGINE = MergeTree ORDER BY id"},
					[]any{"analytics", "users", "MergeTree", "CREATE TABLE analytics.users (id UInt64) ENGINE = MergeTree ORDER BY id"},
				), nil
			}},
		),
	}
	c := newConnector(t, conn)

	all, err := c.GetTablesWithDDL(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	only, err := c.GetTablesWithDDL(context.Background(), "", "users", "missing")
	require.NoError(t, err)
	require.Len(t, only, 1)
	require.Equal(t, "analytics.users", only[0].Identifier)
	require.Equal(t, "table", only[0].TableType)
	require.Contains(t, only[0].Definition, "CREATE TABLE analytics.users")
}

func TestGetSchema(t *testing.T) {
	cols := []testutil.MockColumn{
		testutil.Col("name", "String", ""),
		testutil.Col("type", "String", ""),
		testutil.Col("default_expression", "String", ""),
		testutil.Col("comment", "String", ""),
		testutil.Col("position", "UInt64", uint64(0)),
		testutil.Col("is_in_primary_key", "UInt8", uint8(0)),
	}

	t.Run("columns in order", func(t *testing.T) {
		var args []any
		conn := &testutil.MockConn{
			QueryFunc: router(t, route{"system.columns", func(a ...any) (driver.Rows, error) {
				args = a
				return testutil.Rows(cols,
					[]any{"id", "UInt32", "", "", uint64(1), uint8(1)},
					[]any{"name", "Nullable(String)", "", "display name", uint64(2), uint8(0)},
					[]any{"tag", "LowCardinality(Nullable(String))", "", "", uint64(3), uint8(0)},
					[]any{"age", "UInt8", "0", "", uint64(4), uint8(0)},
				), nil
			}}),
		}

		schema, err := newConnector(t, conn).GetSchema(context.Background(), "", "users")
		require.NoError(t, err)
		require.Equal(t, []any{"analytics", "users"}, args)
		require.Equal(t, []connector.ColumnInfo{
			{Name: "id", Type: "UInt32", PrimaryKey: true, Position: 1},
			{Name: "name", Type: "Nullable(String)", Nullable: true, Comment: "display name", Position: 2},
			{Name: "tag", Type: "LowCardinality(Nullable(String))", Nullable: true, Position: 3},
			{Name: "age", Type: "UInt8", Default: "0", Position: 4},
		}, schema)
	})

	t.Run("missing table", func(t *testing.T) {
		conn := &testutil.MockConn{
			QueryFunc: router(t,
				route{"system.columns", func(...any) (driver.Rows, error) { return testutil.Rows(cols), nil }},
				route{"system.tables", count(0)},
			),
		}

		_, err := newConnector(t, conn).GetSchema(context.Background(), "analytics", "missing")
		require.ErrorIs(t, err, connector.ErrNotFound)
		require.ErrorContains(t, err, "analytics.missing")
	})

	t.Run("introspection failure", func(t *testing.T) {
		conn := &testutil.MockConn{
			QueryFunc: router(t, route{"system.columns", fail(&ch.Exception{Code: 497, Message: "Not enough privileges"})}),
		}

		_, err := newConnector(t, conn).GetSchema(context.Background(), "analytics", "users")
		require.ErrorIs(t, err, connector.ErrIntrospection)
	})
}

func TestGetSampleRows(t *testing.T) {
	cols := []testutil.MockColumn{
		testutil.Col("id", "UInt32", uint32(0)),
		testutil.Col("name", "String", ""),
	}

	conn := &testutil.MockConn{
		QueryFunc: router(t, route{"SELECT * FROM `analytics`.`users`", func(...any) (driver.Rows, error) {
			return testutil.Rows(cols, []any{uint32(1), "alice"}, []any{uint32(2), "bob"}), nil
		}}),
	}

	samples, err := newConnector(t, conn).GetSampleRows(context.Background(), "", []string{"users"}, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"SELECT * FROM `analytics`.`users` LIMIT 5"}, conn.Queries)
	require.Len(t, samples, 1)
	require.Equal(t, "analytics.users", samples[0].Identifier)
	require.Equal(t, "users", samples[0].TableName)
	require.Equal(t, []map[string]any{
		{"id": uint32(1), "name": "alice"},
		{"id": uint32(2), "name": "bob"},
	}, samples[0].Rows)
	require.Equal(t, []string{"id", "name"}, samples[0].Result.ColumnNames())
}

func TestGetSampleRowsAllTables(t *testing.T) {
	conn := &testutil.MockConn{
		QueryFunc: router(t,
			route{"system.databases", count(1)},
			route{"system.tables", tables([]any{"analytics", "events", "MergeTree", ""})},
			route{"LIMIT 2", func(...any) (driver.Rows, error) {
				return testutil.Single("id", "UInt64", uint64(7)), nil
			}},
		),
	}

	samples, err := newConnector(t, conn).GetSampleRows(context.Background(), "", nil, 2)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, "events", samples[0].TableName)
	require.Equal(t, "SELECT * FROM `analytics`.`events` LIMIT 2", conn.Queries[2])
}
