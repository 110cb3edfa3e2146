package connector

import (
	"context"
	"strconv"

	"github.com/datusai/datus-clickhouse/pkg/clickhouse"
	"github.com/datusai/datus-clickhouse/pkg/parser"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/pkg/errors"
)

// DefaultSampleRows is the number of rows GetSampleRows returns per table when
// topN is not positive.
const DefaultSampleRows = 5

type (
	// TableInfo describes a table, view or materialized view with its DDL.
	TableInfo struct {
		Identifier   string `json:"identifier"`
		CatalogName  string `json:"catalog_name"`
		DatabaseName string `json:"database_name"`
		SchemaName   string `json:"schema_name"`
		TableName    string `json:"table_name"`
		TableType    string `json:"table_type"`
		Definition   string `json:"definition"`
	}

	// ColumnInfo is one entry of a table schema.
	ColumnInfo struct {
		Name       string `json:"name"`
		Type       string `json:"type"`
		Nullable   bool   `json:"nullable"`
		PrimaryKey bool   `json:"pk"`
		Default    string `json:"default_value,omitempty"`
		Comment    string `json:"comment,omitempty"`
		Position   int    `json:"cid"`
	}

	// SampleRows holds the first rows of a table. Result keeps the column
	// order that Rows, being records, cannot.
	SampleRows struct {
		Identifier string              `json:"identifier"`
		TableName  string              `json:"table_name"`
		Rows       []map[string]any    `json:"sample_rows"`
		Result     *result.QueryResult `json:"-"`
	}
)

// GetDatabases lists database names in order. System databases (system,
// information_schema, INFORMATION_SCHEMA and default) are omitted unless
// includeSystem is set.
func (c *Connector) GetDatabases(ctx context.Context, includeSystem bool) ([]string, error) {
	dbs, err := clickhouse.ListDatabases(ctx, c.conn, includeSystem)
	if err != nil {
		return nil, classify("get_databases", "", err, KindIntrospection)
	}

	names := make([]string, len(dbs))
	for i, db := range dbs {
		names[i] = db.Name
	}
	return names, nil
}

// GetTables lists the names of regular tables (not views) in database, or in
// the current database when database is empty. A missing database is a
// KindIntrospection error.
func (c *Connector) GetTables(ctx context.Context, database string) ([]string, error) {
	return c.tableNames(ctx, "get_tables", database, clickhouse.KindTable)
}

// GetViews lists the names of regular views in database.
func (c *Connector) GetViews(ctx context.Context, database string) ([]string, error) {
	return c.tableNames(ctx, "get_views", database, clickhouse.KindView)
}

// GetMaterializedViews lists the names of materialized views in database.
func (c *Connector) GetMaterializedViews(ctx context.Context, database string) ([]string, error) {
	return c.tableNames(ctx, "get_materialized_views", database, clickhouse.KindMaterializedView)
}

// GetTablesWithDDL returns tables of database together with their CREATE
// statements. When tables is not empty only those tables are returned.
func (c *Connector) GetTablesWithDDL(ctx context.Context, database string, tables ...string) ([]TableInfo, error) {
	infos, err := c.tableInfos(ctx, "get_tables_with_ddl", database, clickhouse.KindTable)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return infos, nil
	}

	wanted := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		wanted[t] = struct{}{}
	}

	filtered := make([]TableInfo, 0, len(tables))
	for _, info := range infos {
		if _, ok := wanted[info.TableName]; ok {
			filtered = append(filtered, info)
		}
	}
	return filtered, nil
}

// GetViewsWithDDL returns the regular and materialized views of database
// together with their CREATE statements.
func (c *Connector) GetViewsWithDDL(ctx context.Context, database string) ([]TableInfo, error) {
	return c.tableInfos(ctx, "get_views_with_ddl", database, clickhouse.KindView, clickhouse.KindMaterializedView)
}

// GetSchema returns the columns of database.table in declaration order.
// Nullability is derived from the column type. A missing table is a
// KindNotFound error.
func (c *Connector) GetSchema(ctx context.Context, database, table string) ([]ColumnInfo, error) {
	database = c.databaseOrDefault(database)
	target := c.Identifier(database, table)

	cols, err := clickhouse.ListColumns(ctx, c.conn, database, table)
	if err != nil {
		return nil, classify("get_schema", target, err, KindIntrospection)
	}

	if len(cols) == 0 {
		ok, err := clickhouse.TableExists(ctx, c.conn, database, table)
		if err != nil {
			return nil, classify("get_schema", target, err, KindIntrospection)
		}
		if !ok {
			return nil, newError(KindNotFound, "get_schema", target, errors.Errorf("table %s does not exist", target))
		}
	}

	schema := make([]ColumnInfo, len(cols))
	for i, col := range cols {
		schema[i] = ColumnInfo{
			Name:       col.Name,
			Type:       col.Type,
			Nullable:   parser.IsNullableType(col.Type),
			PrimaryKey: col.PrimaryKey,
			Default:    col.Default,
			Comment:    col.Comment,
			Position:   int(col.Position),
		}
	}
	return schema, nil
}

// GetSampleRows returns up to topN rows of each table. When tables is empty
// every table of database is sampled.
func (c *Connector) GetSampleRows(ctx context.Context, database string, tables []string, topN int) ([]SampleRows, error) {
	database = c.databaseOrDefault(database)
	if topN <= 0 {
		topN = DefaultSampleRows
	}

	if len(tables) == 0 {
		names, err := c.GetTables(ctx, database)
		if err != nil {
			return nil, err
		}
		tables = names
	}

	samples := make([]SampleRows, 0, len(tables))
	for _, table := range tables {
		sql := "SELECT * FROM " + c.FullName(database, table) + " LIMIT " + strconv.Itoa(topN)

		res, err := c.query(ctx, "get_sample_rows", sql, nil)
		if err != nil {
			return nil, err
		}

		samples = append(samples, SampleRows{
			Identifier: c.Identifier(database, table),
			TableName:  table,
			Rows:       res.List(),
			Result:     res,
		})
	}
	return samples, nil
}

func (c *Connector) tableNames(ctx context.Context, op, database string, kind clickhouse.TableKind) ([]string, error) {
	infos, err := c.tableInfos(ctx, op, database, kind)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.TableName
	}
	return names, nil
}

func (c *Connector) tableInfos(ctx context.Context, op, database string, kinds ...clickhouse.TableKind) ([]TableInfo, error) {
	database = c.databaseOrDefault(database)

	ok, err := clickhouse.DatabaseExists(ctx, c.conn, database)
	if err != nil {
		return nil, classify(op, database, err, KindIntrospection)
	}
	if !ok {
		return nil, newError(KindIntrospection, op, database, errors.Errorf("database %s does not exist", database))
	}

	tables, err := clickhouse.ListTables(ctx, c.conn, database, kinds...)
	if err != nil {
		return nil, classify(op, database, err, KindIntrospection)
	}

	infos := make([]TableInfo, len(tables))
	for i, t := range tables {
		infos[i] = TableInfo{
			Identifier:   c.Identifier(t.Database, t.Name),
			DatabaseName: t.Database,
			TableName:    t.Name,
			TableType:    string(t.Kind),
			Definition:   t.CreateQuery,
		}
	}
	return infos, nil
}
