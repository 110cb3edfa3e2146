package clickhouse

import (
	"context"

	"github.com/pkg/errors"
)

// DatabaseInfo holds the system.databases entry for one database
type DatabaseInfo struct {
	Name    string
	Engine  string
	Comment string
}

// ListDatabases retrieves databases from system.databases ordered by name.
//
// System databases (system, information_schema, INFORMATION_SCHEMA and default)
// are excluded unless includeSystem is true.
//
// Example:
//
//	databases, err := clickhouse.ListDatabases(ctx, conn, false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, db := range databases {
//		fmt.Printf("Database: %s (%s)\n", db.Name, db.Engine)
//	}
func ListDatabases(ctx context.Context, conn Conn, includeSystem bool) ([]DatabaseInfo, error) {
	query := "SELECT name, engine, comment FROM system.databases"

	var params []any
	if !includeSystem {
		var condition string
		condition, params = buildSystemDatabaseExclusion("name")
		query += " WHERE " + condition
	}
	query += " ORDER BY name"

	rows, err := conn.Query(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query databases")
	}
	defer func() { _ = rows.Close() }()

	var databases []DatabaseInfo
	for rows.Next() {
		var info DatabaseInfo
		if err := rows.Scan(&info.Name, &info.Engine, &info.Comment); err != nil {
			return nil, errors.Wrap(err, "failed to scan database row")
		}
		databases = append(databases, info)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating database rows")
	}

	return databases, nil
}

// DatabaseExists reports whether a database with the given name exists.
func DatabaseExists(ctx context.Context, conn Conn, name string) (bool, error) {
	return exists(ctx, conn, "SELECT count() FROM system.databases WHERE name = ?", name)
}

func exists(ctx context.Context, conn Conn, query string, args ...any) (bool, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	var count uint64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, errors.Wrap(err, "failed to scan count")
		}
	}

	if err := rows.Err(); err != nil {
		return false, err
	}

	return count > 0, nil
}
