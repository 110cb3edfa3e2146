package clickhouse

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const (
	// KindTable is any table that is not a view or dictionary
	KindTable TableKind = "table"

	// KindView is a regular (non-materialized) view
	KindView TableKind = "view"

	// KindMaterializedView is a materialized view
	KindMaterializedView TableKind = "mv"
)

type (
	// TableKind classifies system.tables entries by engine.
	TableKind string

	// TableInfo describes a table or view as recorded in system.tables.
	TableInfo struct {
		Database    string
		Name        string
		Engine      string
		Kind        TableKind
		CreateQuery string
	}
)

// KindForEngine maps a table engine name to its TableKind.
func KindForEngine(engine string) TableKind {
	switch engine {
	case "View":
		return KindView
	case "MaterializedView":
		return KindMaterializedView
	default:
		return KindTable
	}
}

// ListTables retrieves tables and views of a single database from system.tables.
// Results are ordered by name. When kinds is empty every kind is returned.
//
// Temporary tables, dictionaries and the hidden inner tables backing
// materialized views are always excluded.
//
// Example:
//
//	views, err := clickhouse.ListTables(ctx, conn, "analytics", clickhouse.KindView)
//	if err != nil {
//		log.Fatalf("Failed to list views: %v", err)
//	}
//
//	for _, v := range views {
//		fmt.Println(v.Name, v.CreateQuery)
//	}
func ListTables(ctx context.Context, conn Conn, database string, kinds ...TableKind) ([]TableInfo, error) {
	query := `
		SELECT
			database,
			name,
			engine,
			create_table_query
		FROM system.tables
		WHERE database = ?
		  AND is_temporary = 0
		  AND engine != 'Dictionary'
		  AND name NOT LIKE '.inner_id.%'
		  AND name NOT LIKE '.inner.%'`

	if cond := engineCondition(kinds); cond != "" {
		query += "\n		  AND " + cond
	}
	query += "\n		ORDER BY name"

	rows, err := conn.Query(ctx, query, database)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query tables of %s", database)
	}
	defer func() { _ = rows.Close() }()

	var tables []TableInfo
	for rows.Next() {
		var info TableInfo
		if err := rows.Scan(&info.Database, &info.Name, &info.Engine, &info.CreateQuery); err != nil {
			return nil, errors.Wrap(err, "failed to scan table row")
		}

		info.Kind = KindForEngine(info.Engine)
		info.CreateQuery = cleanCreateStatement(info.CreateQuery)
		tables = append(tables, info)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating table rows")
	}

	return tables, nil
}

// TableExists reports whether database.table exists.
func TableExists(ctx context.Context, conn Conn, database, table string) (bool, error) {
	return exists(ctx, conn, "SELECT count() FROM system.tables WHERE database = ? AND name = ?", database, table)
}

func engineCondition(kinds []TableKind) string {
	if len(kinds) == 0 {
		return ""
	}

	var conds []string
	for _, kind := range kinds {
		switch kind {
		case KindTable:
			conds = append(conds, "engine NOT IN ('View', 'MaterializedView')")
		case KindView:
			conds = append(conds, "engine = 'View'")
		case KindMaterializedView:
			conds = append(conds, "engine = 'MaterializedView'")
		}
	}

	if len(conds) == 1 {
		return conds[0]
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}
