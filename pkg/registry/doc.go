// Package registry maps connector type keys, such as "clickhouse", to the
// factories that build them from a structured configuration block.
//
// Connectors register themselves explicitly at process start rather than from
// init functions:
//
//	reg := registry.NewRegistry()
//	connector.Register(reg)
//
//	conn, err := reg.New("clickhouse", map[string]any{"host": "localhost"}, logger)
package registry
