package utils

import (
	"fmt"
	"strings"
)

// SQLBuilder provides a fluent interface for building ClickHouse statements.
// It handles identifier backticking and conditional clause building for the
// DDL and CRUD helpers exposed by the connector.
//
// Example usage:
//
//	sql := NewSQLBuilder().
//		Create("TABLE").
//		IfNotExists().
//		QualifiedName("analytics", "events").
//		Columns([]string{"`id` UInt64", "`name` String"}).
//		Engine("MergeTree").
//		OrderBy("id").
//		String()
//	// Output: CREATE TABLE IF NOT EXISTS `analytics`.`events` (`id` UInt64, `name` String) ENGINE = MergeTree ORDER BY id;
type SQLBuilder struct {
	parts []string
}

// NewSQLBuilder creates a new SQLBuilder instance.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{
		parts: make([]string, 0, 10),
	}
}

// Create adds a CREATE clause with the specified object type.
//
// Example:
//
//	builder.Create("TABLE")     // CREATE TABLE
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "CREATE", objectType)
	return b
}

// Drop adds a DROP clause with the specified object type.
func (b *SQLBuilder) Drop(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "DROP", objectType)
	return b
}

// Alter adds an ALTER clause with the specified object type.
func (b *SQLBuilder) Alter(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "ALTER", objectType)
	return b
}

// IfExists adds an IF EXISTS clause. This should be called after DROP operations.
func (b *SQLBuilder) IfExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "EXISTS")
	return b
}

// IfNotExists adds an IF NOT EXISTS clause. This should be called after CREATE operations.
func (b *SQLBuilder) IfNotExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "NOT", "EXISTS")
	return b
}

// QualifiedName adds a qualified name with optional database prefix.
//
// Example:
//
//	builder.QualifiedName("", "events")              // `events`
//	builder.QualifiedName("analytics", "events")     // `analytics`.`events`
func (b *SQLBuilder) QualifiedName(database, name string) *SQLBuilder {
	if qualifiedName := BacktickQualifiedName(database, name); qualifiedName != "" {
		b.parts = append(b.parts, qualifiedName)
	}
	return b
}

// Columns adds a parenthesized, comma separated list of column definitions.
func (b *SQLBuilder) Columns(defs []string) *SQLBuilder {
	if len(defs) > 0 {
		b.parts = append(b.parts, "("+strings.Join(defs, ", ")+")")
	}
	return b
}

// ColumnNames adds a parenthesized list of backticked column names.
//
// Example:
//
//	builder.ColumnNames([]string{"id", "name"})  // (`id`, `name`)
func (b *SQLBuilder) ColumnNames(names []string) *SQLBuilder {
	if len(names) == 0 {
		return b
	}

	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = QuoteIdentifier(name)
	}
	b.parts = append(b.parts, "("+strings.Join(quoted, ", ")+")")
	return b
}

// Engine adds an ENGINE clause with the specified engine name.
//
// Example:
//
//	builder.Engine("MergeTree()")    // ENGINE = MergeTree()
func (b *SQLBuilder) Engine(engine string) *SQLBuilder {
	if engine != "" {
		b.parts = append(b.parts, "ENGINE", "=", engine)
	}
	return b
}

// OrderBy adds an ORDER BY clause. Multiple expressions are wrapped in a tuple.
//
// Example:
//
//	builder.OrderBy("id")             // ORDER BY id
//	builder.OrderBy("id", "ts")       // ORDER BY (id, ts)
//	builder.OrderBy()                 // ORDER BY tuple()
func (b *SQLBuilder) OrderBy(exprs ...string) *SQLBuilder {
	b.parts = append(b.parts, "ORDER", "BY", tupleExpr(exprs))
	return b
}

// PartitionBy adds a PARTITION BY clause if expr is not empty.
func (b *SQLBuilder) PartitionBy(expr string) *SQLBuilder {
	if expr != "" {
		b.parts = append(b.parts, "PARTITION", "BY", expr)
	}
	return b
}

// Comment adds a COMMENT clause with the specified comment text.
// The comment is automatically quoted and SQL-escaped.
//
// Example:
//
//	builder.Comment("Analytics database")  // COMMENT 'Analytics database'
//	builder.Comment("")                     // (nothing added)
func (b *SQLBuilder) Comment(comment string) *SQLBuilder {
	if comment != "" {
		b.parts = append(b.parts, "COMMENT", Escape(comment))
	}
	return b
}

// InsertInto adds an INSERT INTO clause for a qualified table.
func (b *SQLBuilder) InsertInto(database, table string) *SQLBuilder {
	b.parts = append(b.parts, "INSERT", "INTO")
	return b.QualifiedName(database, table)
}

// Values adds a VALUES clause of rows parenthesized groups of width
// positional placeholders.
//
// Example:
//
//	builder.Values(2, 3)  // VALUES (?, ?, ?), (?, ?, ?)
func (b *SQLBuilder) Values(rows, width int) *SQLBuilder {
	if rows <= 0 || width <= 0 {
		return b
	}

	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"
	groups := make([]string, rows)
	for i := range groups {
		groups[i] = group
	}
	b.parts = append(b.parts, "VALUES", strings.Join(groups, ", "))
	return b
}

// Update adds an UPDATE clause with one placeholder assignment per column, in
// the order given.
//
// Example:
//
//	builder.Update([]string{"name", "age"})  // UPDATE `name` = ?, `age` = ?
func (b *SQLBuilder) Update(columns []string) *SQLBuilder {
	if len(columns) == 0 {
		return b
	}

	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = QuoteIdentifier(col) + " = ?"
	}
	b.parts = append(b.parts, "UPDATE", strings.Join(assignments, ", "))
	return b
}

// DeleteFrom adds a lightweight DELETE FROM clause for a qualified table.
func (b *SQLBuilder) DeleteFrom(database, table string) *SQLBuilder {
	b.parts = append(b.parts, "DELETE", "FROM")
	return b.QualifiedName(database, table)
}

// Delete adds the DELETE keyword used by ALTER TABLE ... DELETE mutations.
func (b *SQLBuilder) Delete() *SQLBuilder {
	b.parts = append(b.parts, "DELETE")
	return b
}

// Where adds a WHERE clause. An empty condition matches every row.
func (b *SQLBuilder) Where(cond string) *SQLBuilder {
	if strings.TrimSpace(cond) == "" {
		cond = "1 = 1"
	}
	b.parts = append(b.parts, "WHERE", cond)
	return b
}

// Raw adds raw SQL text to the builder. Use sparingly for complex constructs
// that don't fit the fluent pattern.
//
// Example:
//
//	builder.Raw("SYNC")  // SYNC
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sql)
	}
	return b
}

// String builds and returns the final SQL statement with a semicolon.
//
// Example:
//
//	sql := builder.Drop("TABLE").QualifiedName("", "test").String()
//	// Returns: "DROP TABLE `test`;"
func (b *SQLBuilder) String() string {
	if len(b.parts) == 0 {
		return ""
	}
	return strings.Join(b.parts, " ") + ";"
}

// StringWithoutSemicolon builds and returns the final SQL statement without a
// semicolon. Statements executed with bound arguments use this form.
func (b *SQLBuilder) StringWithoutSemicolon() string {
	return strings.Join(b.parts, " ")
}

// Escape single-quotes a string literal, escaping backslashes and quotes.
//
// Example:
//
//	Escape("User's db")  // 'User\'s db'
func Escape(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return fmt.Sprintf("'%s'", escaped)
}

func tupleExpr(exprs []string) string {
	switch len(exprs) {
	case 0:
		return "tuple()"
	case 1:
		return exprs[0]
	}
	return "(" + strings.Join(exprs, ", ") + ")"
}
