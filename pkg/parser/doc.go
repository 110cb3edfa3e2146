// Package parser parses ClickHouse data type expressions with a participle
// grammar.
//
// Column types come back from system.columns and from the driver's result
// metadata as strings such as "LowCardinality(Nullable(String))" or
// "Map(String, Array(UInt64))". ParseType turns them into a small AST that the
// connector uses to derive nullability and that the result package uses to pick
// columnar (Arrow) representations.
//
// Basic usage:
//
//	dt, err := parser.ParseType("Nullable(Decimal(10, 2))")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dt.IsNullable() // true
//	dt.BaseName()   // "Decimal"
//	dt.String()     // "Nullable(Decimal(10, 2))"
package parser
