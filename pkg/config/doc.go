// Package config defines the connection parameters for a ClickHouse connector.
//
// A ConnectionConfig can be built from explicit fields, a YAML document or the
// untyped configuration block a host framework passes to a connector factory:
//
//	cfg, err := config.FromMap(map[string]any{
//		"type":     "clickhouse",
//		"host":     "localhost",
//		"port":     9000,
//		"username": "default",
//		"password": "",
//		"database": "analytics",
//	})
//	if err != nil {
//		var cfgErr *config.ConfigurationError
//		if errors.As(err, &cfgErr) {
//			log.Fatalf("bad %s: %s", cfgErr.Field, cfgErr.Reason)
//		}
//	}
//
// Missing optional fields are defaulted (port 9000, user and database
// "default", native protocol) and the result is validated before it is
// returned. DSN renders the configuration as a clickhouse-go connection URI;
// Redacted and String mask the password.
package config
