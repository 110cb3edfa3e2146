package connector_test

import (
	"context"
	"testing"
	"time"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/datusai/datus-clickhouse/pkg/docker"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/datusai/datus-clickhouse/pkg/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestIntegration(t *testing.T) {
	container := testutil.StartClickHouse(t, docker.DockerOptions{Password: "secret"})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	cfg, err := container.ConnectionConfig(ctx)
	require.NoError(t, err)

	c, err := connector.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	t.Run("test connection", func(t *testing.T) {
		require.NoError(t, c.TestConnection(ctx))

		bad := *cfg
		bad.Password = "wrong"
		wrong, err := connector.New(&bad)
		require.NoError(t, err)
		defer func() { _ = wrong.Close() }()

		err = wrong.TestConnection(ctx)
		require.ErrorIs(t, err, connector.ErrConnection)

		var ce *connector.Error
		require.True(t, errors.As(err, &ce))
		require.Equal(t, connector.ReasonAuth, ce.Reason)
	})

	t.Run("unreachable", func(t *testing.T) {
		down := *cfg
		down.Host = "127.0.0.1"
		down.Port = 1
		down.DialTimeout = time.Second
		unreachable, err := connector.New(&down)
		require.NoError(t, err)
		defer func() { _ = unreachable.Close() }()

		err = unreachable.TestConnection(ctx)
		require.ErrorIs(t, err, connector.ErrConnection)

		var ce *connector.Error
		require.True(t, errors.As(err, &ce))
		require.Equal(t, connector.ReasonUnreachable, ce.Reason)
	})

	_, err = c.ExecuteDDL(ctx, "CREATE DATABASE IF NOT EXISTS datus_it")
	require.NoError(t, err)
	require.NoError(t, c.SwitchContext(ctx, "datus_it"))

	t.Run("create list drop", func(t *testing.T) {
		_, err := c.CreateTable(ctx, connector.TableSpec{
			Name:    "t1",
			Columns: []connector.ColumnSpec{{Name: "id", Type: "UInt32"}},
			OrderBy: []string{"id"},
		})
		require.NoError(t, err)

		tables, err := c.GetTables(ctx, "")
		require.NoError(t, err)
		require.Contains(t, tables, "t1")

		_, err = c.DropTable(ctx, "", "t1")
		require.NoError(t, err)

		tables, err = c.GetTables(ctx, "")
		require.NoError(t, err)
		require.NotContains(t, tables, "t1")

		_, err = c.DropTable(ctx, "", "t1")
		require.NoError(t, err)
	})

	t.Run("schema matches ddl", func(t *testing.T) {
		_, err := c.Execute(ctx, "CREATE TABLE users (id UInt32, name String, email Nullable(String)) ENGINE = MergeTree ORDER BY id", "")
		require.NoError(t, err)

		schema, err := c.GetSchema(ctx, "", "users")
		require.NoError(t, err)
		require.Len(t, schema, 3)
		require.Equal(t, "id", schema[0].Name)
		require.Equal(t, "UInt32", schema[0].Type)
		require.True(t, schema[0].PrimaryKey)
		require.Equal(t, "name", schema[1].Name)
		require.Equal(t, "String", schema[1].Type)
		require.False(t, schema[1].Nullable)
		require.True(t, schema[2].Nullable)

		_, err = c.GetSchema(ctx, "", "missing")
		require.ErrorIs(t, err, connector.ErrNotFound)
	})

	t.Run("crud", func(t *testing.T) {
		res, err := c.Insert(ctx, "", "users", []string{"id", "name", "email"}, [][]any{
			{uint32(1), "alice", "alice@example.com"},
			{uint32(2), "bob", nil},
			{uint32(3), "carol", nil},
		})
		require.NoError(t, err)
		require.EqualValues(t, 3, res.RowCount)

		res, err = c.Update(ctx, "", "users", map[string]any{"name": "robert"}, "id = ?", uint32(2))
		require.NoError(t, err)
		require.EqualValues(t, 1, res.RowCount)

		res, err = c.Execute(ctx, "DELETE FROM users WHERE id = 3", "")
		require.NoError(t, err)
		require.EqualValues(t, 1, res.RowCount)

		out, err := c.ExecuteQuery(ctx, "SELECT id, name FROM users ORDER BY id", nil, result.FormatList)
		require.NoError(t, err)
		require.Equal(t, []map[string]any{
			{"id": uint32(1), "name": "alice"},
			{"id": uint32(2), "name": "robert"},
		}, out)
	})

	t.Run("raw insert row count", func(t *testing.T) {
		_, err := c.Execute(ctx, "CREATE TABLE notes (id UInt32, note String) ENGINE = MergeTree ORDER BY id", "")
		require.NoError(t, err)

		res, err := c.Execute(ctx, "INSERT INTO notes VALUES (1, 'a'), (2, 'b')", "")
		require.NoError(t, err)
		require.EqualValues(t, 2, res.RowCount)

		httpCfg, err := container.HTTPConnectionConfig(ctx)
		require.NoError(t, err)
		httpCfg.Database = "datus_it"

		overHTTP, err := connector.New(httpCfg)
		require.NoError(t, err)
		defer func() { _ = overHTTP.Close() }()

		res, err = overHTTP.ExecuteInsert(ctx, "INSERT INTO notes (id, note) VALUES (3, 'c'), (4, 'd')")
		require.NoError(t, err)
		require.EqualValues(t, 2, res.RowCount)

		res, err = c.Execute(ctx, "UPDATE notes SET note = 'see where it goes' WHERE id = 1", "")
		require.NoError(t, err)
		require.EqualValues(t, 1, res.RowCount)

		out, err := c.ExecuteQuery(ctx, "SELECT note FROM notes WHERE id = 1", nil, result.FormatList)
		require.NoError(t, err)
		require.Equal(t, []map[string]any{{"note": "see where it goes"}}, out)
	})

	t.Run("array and null parameters", func(t *testing.T) {
		out, err := c.ExecuteQuery(ctx,
			"SELECT id FROM users WHERE id IN {ids:Array(UInt32)} AND isNull({missing:Nullable(String)}) ORDER BY id",
			map[string]any{"ids": []uint32{1, 2}, "missing": nil}, result.FormatList)
		require.NoError(t, err)
		require.Equal(t, []map[string]any{{"id": uint32(1)}, {"id": uint32(2)}}, out)

		out, err = c.ExecuteQuery(ctx, "SELECT {names:Array(String)} AS names",
			map[string]any{"names": []string{"it's", `a\b`}}, result.FormatList)
		require.NoError(t, err)
		require.Equal(t, []map[string]any{{"names": []string{"it's", `a\b`}}}, out)
	})

	t.Run("list and frame agree", func(t *testing.T) {
		sql := "SELECT id, name, email FROM users ORDER BY id"

		list, err := c.ExecuteQuery(ctx, sql, nil, result.FormatList)
		require.NoError(t, err)

		frame, err := c.ExecuteQuery(ctx, sql, nil, result.FormatPandas)
		require.NoError(t, err)
		require.Equal(t, list, frame.(*result.Frame).Records())
	})

	t.Run("named parameters", func(t *testing.T) {
		out, err := c.ExecuteQuery(ctx, "SELECT name FROM users WHERE id = {id:UInt32}", map[string]any{"id": 1}, result.FormatList)
		require.NoError(t, err)
		require.Equal(t, []map[string]any{{"name": "alice"}}, out)
	})

	t.Run("malformed sql", func(t *testing.T) {
		_, err := c.ExecuteQuery(ctx, "SELEKT * FROM x", nil, result.FormatList)
		require.ErrorIs(t, err, connector.ErrQuery)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := c.ExecuteQuery(ctx, "SELECT * FROM does_not_exist", nil, result.FormatList)
		require.ErrorIs(t, err, connector.ErrNotFound)
		require.NotErrorIs(t, err, connector.ErrQuery)
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := c.GetTables(ctx, "no_such_db")
		require.ErrorIs(t, err, connector.ErrIntrospection)
	})

	t.Run("sample rows", func(t *testing.T) {
		samples, err := c.GetSampleRows(ctx, "", []string{"users"}, 1)
		require.NoError(t, err)
		require.Len(t, samples, 1)
		require.Len(t, samples[0].Rows, 1)
		require.Equal(t, "datus_it.users", samples[0].Identifier)
	})

	t.Run("views", func(t *testing.T) {
		_, err := c.Execute(ctx, "CREATE VIEW user_names AS SELECT name FROM users", "")
		require.NoError(t, err)

		views, err := c.GetViews(ctx, "")
		require.NoError(t, err)
		require.Equal(t, []string{"user_names"}, views)

		withDDL, err := c.GetViewsWithDDL(ctx, "")
		require.NoError(t, err)
		require.Len(t, withDDL, 1)
		require.Contains(t, withDDL[0].Definition, "CREATE VIEW datus_it.user_names")

		tables, err := c.GetTables(ctx, "")
		require.NoError(t, err)
		require.NotContains(t, tables, "user_names")
	})
}
