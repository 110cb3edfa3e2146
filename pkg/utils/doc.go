// Package utils provides identifier quoting and a fluent SQL builder shared by
// the connector and the CLI.
//
// # Identifier Utilities (identifier.go)
//
// ClickHouse identifiers are quoted with backticks. BacktickQualifiedName quotes
// each part of a database-qualified name on its own, while DottedName renders
// the plain dotted form used as a stable identifier in metadata:
//
//	utils.BacktickQualifiedName("analytics", "events") // `analytics`.`events`
//	utils.DottedName("analytics", "events")            // analytics.events
//
// # SQL Builder (sqlbuilder.go)
//
// SQLBuilder assembles CREATE, DROP, INSERT, ALTER ... UPDATE and DELETE
// statements from parts. Values are never interpolated; INSERT, UPDATE and
// DELETE statements use positional ? placeholders that the driver binds:
//
//	sql := utils.NewSQLBuilder().
//		InsertInto("analytics", "events").
//		ColumnNames([]string{"id", "name"}).
//		Values(2, 2).
//		StringWithoutSemicolon()
//	// INSERT INTO `analytics`.`events` (`id`, `name`) VALUES (?, ?), (?, ?)
package utils
