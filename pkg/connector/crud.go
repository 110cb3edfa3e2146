package connector

import (
	"context"
	"sort"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/datusai/datus-clickhouse/pkg/parser"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/datusai/datus-clickhouse/pkg/utils"
	"github.com/pkg/errors"
)

// DefaultEngine is used by CreateTable when a TableSpec names no engine.
const DefaultEngine = "MergeTree"

type (
	// ColumnSpec declares one column for CreateTable.
	ColumnSpec struct {
		Name    string
		Type    string
		Default string
		Comment string
	}

	// TableSpec declares a table for CreateTable. Database defaults to the
	// connector's current database and Engine to DefaultEngine. OrderBy and
	// PartitionBy only apply to MergeTree family engines; an empty OrderBy
	// renders ORDER BY tuple().
	TableSpec struct {
		Database    string
		Name        string
		Columns     []ColumnSpec
		Engine      string
		OrderBy     []string
		PartitionBy string
		Comment     string
		IfNotExists bool
	}

	batcher interface {
		PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
	}
)

// CreateTable builds and runs a CREATE TABLE statement. Column types are
// parsed before anything is sent to the server.
//
// Example:
//
//	_, err := c.CreateTable(ctx, connector.TableSpec{
//		Name: "users",
//		Columns: []connector.ColumnSpec{
//			{Name: "id", Type: "UInt32"},
//			{Name: "name", Type: "String"},
//		},
//		OrderBy: []string{"id"},
//	})
func (c *Connector) CreateTable(ctx context.Context, spec TableSpec) (*result.ExecuteResult, error) {
	database := c.databaseOrDefault(spec.Database)
	target := c.Identifier(database, spec.Name)

	if spec.Name == "" {
		return nil, newError(KindQuery, "create_table", target, errors.New("table name is required"))
	}
	if len(spec.Columns) == 0 {
		return nil, newError(KindQuery, "create_table", target, errors.New("at least one column is required"))
	}

	defs := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		def, err := columnDefinition(col)
		if err != nil {
			return nil, newError(KindQuery, "create_table", target, err)
		}
		defs[i] = def
	}

	engine := spec.Engine
	if engine == "" {
		engine = DefaultEngine
	}

	b := utils.NewSQLBuilder().Create("TABLE")
	if spec.IfNotExists {
		b.IfNotExists()
	}
	b.QualifiedName(database, spec.Name).Columns(defs).Engine(engine)
	if strings.Contains(engine, "MergeTree") {
		b.PartitionBy(spec.PartitionBy).OrderBy(spec.OrderBy...)
	}
	b.Comment(spec.Comment)

	sql := b.StringWithoutSemicolon()
	if _, err := c.exec(ctx, "create_table", sql, nil); err != nil {
		return nil, err
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql}, nil
}

// DropTable drops database.table if it exists.
func (c *Connector) DropTable(ctx context.Context, database, table string) (*result.ExecuteResult, error) {
	database = c.databaseOrDefault(database)
	if table == "" {
		return nil, newError(KindQuery, "drop_table", database, errors.New("table name is required"))
	}

	sql := utils.NewSQLBuilder().Drop("TABLE").IfExists().QualifiedName(database, table).StringWithoutSemicolon()
	if _, err := c.exec(ctx, "drop_table", sql, nil); err != nil {
		return nil, err
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql}, nil
}

// Insert writes rows into database.table. Each row holds one value per
// column, in the order of columns. Native connections send a single batch;
// other connections bind the values to an INSERT ... VALUES statement.
func (c *Connector) Insert(ctx context.Context, database, table string, columns []string, rows [][]any) (*result.ExecuteResult, error) {
	database = c.databaseOrDefault(database)
	target := c.Identifier(database, table)

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, newError(KindQuery, "insert", target, errors.Errorf("row %d has %d values, expected %d", i, len(row), len(columns)))
		}
	}

	base := utils.NewSQLBuilder().InsertInto(database, table).ColumnNames(columns)
	if len(rows) == 0 {
		return &result.ExecuteResult{Success: true, SQLQuery: base.StringWithoutSemicolon()}, nil
	}

	if b, ok := c.conn.(batcher); ok {
		sql := base.StringWithoutSemicolon()
		if err := c.sendBatch(ctx, b, sql, rows); err != nil {
			return nil, classify("insert", target, err, KindQuery)
		}
		return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: int64(len(rows))}, nil
	}

	args := make([]any, 0, len(rows)*len(columns))
	for _, row := range rows {
		args = append(args, row...)
	}

	sql := base.Values(len(rows), len(columns)).StringWithoutSemicolon()
	if _, err := c.exec(ctx, "insert", sql, nil, args...); err != nil {
		return nil, err
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: int64(len(rows))}, nil
}

// Update sets columns of the rows of database.table matching where, which may
// contain ? placeholders bound to whereArgs. It runs as a synchronous
// ALTER TABLE ... UPDATE mutation and reports the number of matching rows.
func (c *Connector) Update(ctx context.Context, database, table string, set map[string]any, where string, whereArgs ...any) (*result.ExecuteResult, error) {
	database = c.databaseOrDefault(database)
	target := c.Identifier(database, table)
	if len(set) == 0 {
		return nil, newError(KindQuery, "update", target, errors.New("no columns to update"))
	}

	columns := make([]string, 0, len(set))
	for col := range set {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	args := make([]any, 0, len(set)+len(whereArgs))
	for _, col := range columns {
		args = append(args, set[col])
	}
	args = append(args, whereArgs...)

	m := mutation{Table: c.FullName(database, table), Where: where}
	count, err := c.count(ctx, "update", m, whereArgs...)
	if err != nil {
		return nil, err
	}

	sql := utils.NewSQLBuilder().
		Alter("TABLE").
		QualifiedName(database, table).
		Update(columns).
		Where(where).
		StringWithoutSemicolon()
	if _, err := c.exec(ctx, "update", sql, mutationsSync, args...); err != nil {
		return nil, err
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: count}, nil
}

// Delete removes the rows of database.table matching where, which may contain
// ? placeholders bound to whereArgs, and reports how many matched.
func (c *Connector) Delete(ctx context.Context, database, table, where string, whereArgs ...any) (*result.ExecuteResult, error) {
	database = c.databaseOrDefault(database)

	m := mutation{Table: c.FullName(database, table), Where: where}
	count, err := c.count(ctx, "delete", m, whereArgs...)
	if err != nil {
		return nil, err
	}

	lightweight := true
	if v, err := c.serverVersion(ctx); err != nil {
		c.logger.Warn("failed to detect server version", "error", err)
	} else {
		lightweight = v.SupportsLightweightDelete()
	}

	sql := m.deleteSQL(false)
	if lightweight {
		sql = utils.NewSQLBuilder().DeleteFrom(database, table).Where(where).StringWithoutSemicolon()
	}
	if _, err := c.exec(ctx, "delete", sql, mutationsSync, whereArgs...); err != nil {
		return nil, err
	}
	return &result.ExecuteResult{Success: true, SQLQuery: sql, RowCount: count}, nil
}

func (c *Connector) sendBatch(ctx context.Context, b batcher, sql string, rows [][]any) error {
	batch, err := b.PrepareBatch(ctx, sql)
	if err != nil {
		return err
	}
	defer func() { _ = batch.Close() }()

	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return err
		}
	}

	c.logger.Debug("sending batch", "target", summarize(sql), "rows", len(rows))
	return batch.Send()
}

func columnDefinition(col ColumnSpec) (string, error) {
	if col.Name == "" {
		return "", errors.New("column name is required")
	}

	dt, err := parser.ParseType(col.Type)
	if err != nil {
		return "", errors.Wrapf(err, "column %s", col.Name)
	}

	def := utils.QuoteIdentifier(col.Name) + " " + dt.String()
	if col.Default != "" {
		def += " DEFAULT " + col.Default
	}
	if col.Comment != "" {
		def += " COMMENT " + utils.Escape(col.Comment)
	}
	return def, nil
}
