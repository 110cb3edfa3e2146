package connector

import (
	"context"
	"sync/atomic"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/pkg/errors"
)

// mutationsSync makes ALTER TABLE ... UPDATE/DELETE wait for all replicas.
var mutationsSync = ch.Settings{"mutations_sync": 2}

// ExecuteQuery runs a statement and returns its rows shaped per format. An
// empty format selects result.FormatFrame.
//
// params binds query parameters: a map[string]any (or map[string]string) is
// sent as server side parameters referenced as {name:Type}; a []any is bound
// to positional ? placeholders.
//
// Example:
//
//	out, err := c.ExecuteQuery(ctx, "SELECT {n:UInt8} AS n", map[string]any{"n": 1}, result.FormatList)
//	// out: []map[string]any{{"n": uint8(1)}}
func (c *Connector) ExecuteQuery(ctx context.Context, sql string, params any, format result.OutputFormat) (any, error) {
	f, err := result.ParseFormat(string(format))
	if err != nil {
		return nil, newError(KindQuery, "execute_query", summarize(sql), err)
	}

	res, err := c.query(ctx, "execute_query", sql, params)
	if err != nil {
		return nil, err
	}

	out, err := res.Format(f)
	if err != nil {
		return nil, newError(KindQuery, "execute_query", summarize(sql), err)
	}
	return out, nil
}

// Query runs a statement and returns the unshaped result.
func (c *Connector) Query(ctx context.Context, sql string, params any) (*result.QueryResult, error) {
	return c.query(ctx, "query", sql, params)
}

// Execute runs any single statement, choosing the query, insert, update,
// delete or DDL path from its leading keyword. For queries Return holds the
// shaped rows and RowCount their number.
func (c *Connector) Execute(ctx context.Context, sql string, format result.OutputFormat) (*result.ExecuteResult, error) {
	switch classifyStatement(sql) {
	case stmtInsert:
		return c.ExecuteInsert(ctx, sql)
	case stmtUpdate:
		return c.ExecuteUpdate(ctx, sql)
	case stmtDelete:
		return c.ExecuteDelete(ctx, sql)
	case stmtDDL:
		return c.ExecuteDDL(ctx, sql)
	}

	f, err := result.ParseFormat(string(format))
	if err != nil {
		return nil, newError(KindQuery, "execute", summarize(sql), err)
	}

	res, err := c.query(ctx, "execute", sql, nil)
	if err != nil {
		return nil, err
	}

	out, err := res.Format(f)
	if err != nil {
		return nil, newError(KindQuery, "execute", summarize(sql), err)
	}

	return &result.ExecuteResult{
		Success:  true,
		SQLQuery: sql,
		RowCount: int64(res.Len()),
		Return:   out,
		Format:   f,
	}, nil
}

// ExecuteDDL runs a DDL statement such as CREATE, ALTER or DROP.
func (c *Connector) ExecuteDDL(ctx context.Context, sql string) (*result.ExecuteResult, error) {
	if _, err := c.exec(ctx, "execute_ddl", sql, nil); err != nil {
		return nil, err
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql}, nil
}

// ExecuteInsert runs an INSERT statement. RowCount is the number of rows the
// server reported as written. The HTTP interface sends no progress, so there
// the rows of an INSERT ... VALUES statement are counted instead.
func (c *Connector) ExecuteInsert(ctx context.Context, sql string) (*result.ExecuteResult, error) {
	written, err := c.exec(ctx, "execute_insert", sql, nil)
	if err != nil {
		return nil, err
	}

	rows := int64(written)
	if rows == 0 {
		rows = int64(valuesRows(sql))
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: rows}, nil
}

// ExecuteUpdate runs an UPDATE statement.
//
// UPDATE t SET .. WHERE .. is executed as the equivalent synchronous
// ALTER TABLE t UPDATE .. WHERE .. mutation. RowCount is the number of rows
// matching the condition when the statement started.
func (c *Connector) ExecuteUpdate(ctx context.Context, sql string) (*result.ExecuteResult, error) {
	m, ok := parseUpdate(sql)
	if !ok {
		if _, err := c.exec(ctx, "execute_update", sql, mutationsSync); err != nil {
			return nil, err
		}
		return &result.ExecuteResult{Success: true, SQLQuery: sql}, nil
	}

	count, err := c.count(ctx, "execute_update", m)
	if err != nil {
		return nil, err
	}

	if _, err := c.exec(ctx, "execute_update", m.alterUpdateSQL(), mutationsSync); err != nil {
		return nil, err
	}

	return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: count}, nil
}

// ExecuteDelete runs a DELETE statement. Servers without lightweight delete
// support receive the equivalent ALTER TABLE ... DELETE mutation. RowCount is
// the number of rows matching the condition when the statement started.
func (c *Connector) ExecuteDelete(ctx context.Context, sql string) (*result.ExecuteResult, error) {
	m, ok := parseDelete(sql)
	if !ok {
		if _, err := c.exec(ctx, "execute_delete", sql, mutationsSync); err != nil {
			return nil, err
		}
		return &result.ExecuteResult{Success: true, SQLQuery: sql}, nil
	}

	count, err := c.count(ctx, "execute_delete", m)
	if err != nil {
		return nil, err
	}

	lightweight := true
	if v, err := c.serverVersion(ctx); err != nil {
		c.logger.Warn("failed to detect server version", "error", err)
	} else {
		lightweight = v.SupportsLightweightDelete()
	}

	if _, err := c.exec(ctx, "execute_delete", m.deleteSQL(lightweight), mutationsSync); err != nil {
		return nil, err
	}

	return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: count}, nil
}

func (c *Connector) query(ctx context.Context, op, sql string, params any) (*result.QueryResult, error) {
	ctx, args, err := bindParams(ctx, params)
	if err != nil {
		return nil, newError(KindQuery, op, summarize(sql), err)
	}

	start := time.Now()
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		c.logger.Debug("query failed", "op", op, "target", summarize(sql), "error", err)
		return nil, classify(op, summarize(sql), err, KindQuery)
	}
	defer func() { _ = rows.Close() }()

	res, err := result.Scan(rows)
	if err != nil {
		return nil, classify(op, summarize(sql), err, KindQuery)
	}

	c.logger.Debug("query executed",
		"op", op,
		"target", summarize(sql),
		"rows", res.Len(),
		"duration", time.Since(start))
	return res, nil
}

// exec runs a statement that returns no rows and reports the number of rows
// written according to the server's progress packets.
func (c *Connector) exec(ctx context.Context, op, sql string, settings ch.Settings, args ...any) (uint64, error) {
	var written atomic.Uint64

	opts := []ch.QueryOption{
		ch.WithProgress(func(p *ch.Progress) {
			written.Add(p.WroteRows)
		}),
	}
	if len(settings) > 0 {
		opts = append(opts, ch.WithSettings(settings))
	}

	start := time.Now()
	if err := c.conn.Exec(ch.Context(ctx, opts...), sql, args...); err != nil {
		c.logger.Debug("statement failed", "op", op, "target", summarize(sql), "error", err)
		return 0, classify(op, summarize(sql), err, KindQuery)
	}

	c.logger.Debug("statement executed",
		"op", op,
		"target", summarize(sql),
		"written", written.Load(),
		"duration", time.Since(start))
	return written.Load(), nil
}

func (c *Connector) count(ctx context.Context, op string, m mutation, args ...any) (int64, error) {
	var params any
	if len(args) > 0 {
		params = args
	}

	res, err := c.query(ctx, op, m.countSQL(), params)
	if err != nil {
		return 0, err
	}
	if res.Len() != 1 || len(res.Rows[0]) != 1 {
		return 0, newError(KindQuery, op, m.Table, errors.New("unexpected count result"))
	}

	switch n := res.Rows[0][0].(type) {
	case uint64:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, newError(KindQuery, op, m.Table, errors.Errorf("unexpected count type %T", res.Rows[0][0]))
}

func bindParams(ctx context.Context, params any) (context.Context, []any, error) {
	switch p := params.(type) {
	case nil:
		return ctx, nil, nil
	case []any:
		return ctx, p, nil
	case map[string]string:
		return ch.Context(ctx, ch.WithParameters(ch.Parameters(p))), nil, nil
	case map[string]any:
		named, err := encodeParams(p)
		if err != nil {
			return ctx, nil, err
		}
		return ch.Context(ctx, ch.WithParameters(named)), nil, nil
	}
	return ctx, nil, errors.Errorf("unsupported query parameters of type %T", params)
}
