package utils

import "strings"

// QuoteIdentifier wraps a single identifier part in backticks, escaping any
// backticks it contains. Dots are kept as part of the name.
//
// Examples:
//   - "events" -> "`events`"
//   - "odd`name" -> "`odd``name`"
//   - "a.b" -> "`a.b`"
func QuoteIdentifier(part string) string {
	return "`" + strings.ReplaceAll(part, "`", "``") + "`"
}

// BacktickQualifiedName formats a qualified name (database.name) with proper backticks.
// Each part is quoted on its own, so a table name containing a dot stays a single
// identifier. If database is empty, only the name is quoted.
//
// Examples:
//   - ("analytics", "events") -> "`analytics`.`events`"
//   - ("", "events") -> "`events`"
func BacktickQualifiedName(database, name string) string {
	if name == "" {
		return ""
	}
	if database == "" {
		return QuoteIdentifier(name)
	}
	return QuoteIdentifier(database) + "." + QuoteIdentifier(name)
}

// DottedName joins the non-empty parts of a name with dots and no quoting.
//
// Examples:
//   - ("analytics", "events") -> "analytics.events"
//   - ("", "events") -> "events"
func DottedName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ".")
}
