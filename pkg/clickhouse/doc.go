// Package clickhouse wraps the clickhouse-go driver for the connector.
//
// It turns a config.ConnectionConfig into driver options (protocol, auth,
// pool sizes, compression, TLS) and provides the introspection queries the
// connector is built on, all reading ClickHouse system tables:
//
//   - ListDatabases / DatabaseExists: system.databases
//   - ListTables / TableExists: system.tables, classified by engine into
//     tables, views and materialized views
//   - ListColumns: system.columns, ordered by position
//   - GetVersion: the server version, parsed
//
// Every function accepts the narrow Conn interface rather than a concrete
// driver connection so callers can substitute a fake in tests.
//
// Example usage:
//
//	conn, err := clickhouse.Open(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	tables, err := clickhouse.ListTables(ctx, conn, "analytics", clickhouse.KindTable)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Connection pooling is entirely the driver's: Open does not dial, and every
// call checks a connection out of the driver pool for its duration.
package clickhouse
