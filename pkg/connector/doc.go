// Package connector implements the ClickHouse connector for the datus agent.
//
// A Connector wraps one pooled ClickHouse connection and exposes three groups
// of operations:
//
//   - query execution: ExecuteQuery, Execute and the statement specific
//     ExecuteInsert, ExecuteUpdate, ExecuteDelete and ExecuteDDL
//   - metadata introspection: GetDatabases, GetTables, GetViews,
//     GetMaterializedViews, GetTablesWithDDL, GetViewsWithDDL, GetSchema and
//     GetSampleRows
//   - DDL and CRUD helpers: CreateTable, DropTable, Insert, Update and Delete
//
// Query results can be shaped as a column oriented frame, an Arrow record, a
// CSV document or a list of records (see the result package).
//
// Failures are always returned as *Error. Its Kind tells configuration,
// connection, query, introspection and not-found failures apart, and the
// original server exception stays reachable through errors.As:
//
//	_, err := c.ExecuteQuery(ctx, "SELECT * FROM missing", nil, result.FormatList)
//	switch {
//	case errors.Is(err, connector.ErrNotFound):
//		// the table or database does not exist
//	case errors.Is(err, connector.ErrConnection):
//		// the server is unreachable or rejected the credentials
//	}
//
// Hosts that look connectors up by name call Register once at startup:
//
//	connector.Register(registry.Default)
//	conn, err := registry.New("clickhouse", values, logger)
package connector
