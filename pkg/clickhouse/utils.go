package clickhouse

import (
	"strings"

	"github.com/datusai/datus-clickhouse/pkg/consts"
)

// buildSystemDatabaseExclusion creates a SQL "NOT IN" clause for excluding system databases
// using parameterized queries to prevent SQL injection. Returns the SQL condition and the
// parameters to use with the query.
// The columnName parameter specifies which column to check (e.g., "database", "name").
func buildSystemDatabaseExclusion(columnName string) (string, []any) {
	return buildInClause(columnName, true, consts.SystemDatabases)
}

// buildInClause renders "col IN (?, ...)" (or NOT IN) with one parameter per value.
func buildInClause(columnName string, negate bool, values []string) (string, []any) {
	placeholders := make([]string, len(values))
	params := make([]any, len(values))

	for i, v := range values {
		placeholders[i] = "?"
		params[i] = v
	}

	op := " IN ("
	if negate {
		op = " NOT IN ("
	}

	return columnName + op + strings.Join(placeholders, ", ") + ")", params
}

// cleanCreateStatement trims a CREATE statement returned by system tables and
// ensures it is terminated with a semicolon.
func cleanCreateStatement(createQuery string) string {
	cleaned := strings.TrimSpace(createQuery)
	if cleaned == "" {
		return ""
	}
	if !strings.HasSuffix(cleaned, ";") {
		cleaned += ";"
	}

	return cleaned
}
