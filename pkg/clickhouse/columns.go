package clickhouse

import (
	"context"

	"github.com/pkg/errors"
)

// ColumnInfo is a system.columns entry.
type ColumnInfo struct {
	Name       string
	Type       string
	Default    string
	Comment    string
	Position   uint64
	PrimaryKey bool
}

// ListColumns returns the columns of database.table ordered by position. An
// empty result means the table does not exist (or has no visible columns).
func ListColumns(ctx context.Context, conn Conn, database, table string) ([]ColumnInfo, error) {
	query := `
		SELECT
			name,
			type,
			default_expression,
			comment,
			position,
			is_in_primary_key
		FROM system.columns
		WHERE database = ? AND table = ?
		ORDER BY position`

	rows, err := conn.Query(ctx, query, database, table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query columns of %s.%s", database, table)
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var (
			col  ColumnInfo
			inPK uint8
		)
		if err := rows.Scan(&col.Name, &col.Type, &col.Default, &col.Comment, &col.Position, &inPK); err != nil {
			return nil, errors.Wrap(err, "failed to scan column row")
		}

		col.PrimaryKey = inPK == 1
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating column rows")
	}

	return columns, nil
}
