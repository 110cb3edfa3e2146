// Package cmd provides the datus-clickhouse command line interface.
//
// The CLI is a thin shell over the connector package. It is handy for checking
// a connection configuration before handing it to the agent and for poking at
// a server the same way the agent does.
//
// # Available Commands
//
//   - ping: verify connectivity and credentials
//   - databases: list databases
//   - tables: list tables, views or materialized views, optionally with DDL
//   - schema: describe the columns of a table
//   - sample: show the first rows of one or more tables
//   - query: run a statement and render its result in any output format
//
// # Global Options
//
// The connection is read from clickhouse.yaml (or the file named by
// $DATUS_CLICKHOUSE_CONFIG) when present; connection flags override
// individual fields:
//   - --host, --port, --username, --password, --database
//   - --protocol: native or http
//   - --secure: enable TLS
//   - --debug: log every statement to stderr
//
// # Example Usage
//
//	datus-clickhouse ping
//	datus-clickhouse --database analytics tables --ddl
//	datus-clickhouse schema events
//	datus-clickhouse query --format csv "SELECT * FROM events LIMIT 10"
//	datus-clickhouse query --param id=42 "SELECT * FROM users WHERE id = {id:UInt64}"
//
// Commands are provided to the root command through an fx value group, see
// Module.
package cmd
