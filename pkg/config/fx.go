package config

import (
	"os"

	"go.uber.org/fx"
)

// DefaultConfigFile is read at startup when present.
const DefaultConfigFile = "clickhouse.yaml"

var Module = fx.Module("config", fx.Provide(
	// Loads the connection config from $DATUS_CLICKHOUSE_CONFIG or clickhouse.yaml.
	// Returns nil when neither exists so commands can build one from flags.
	func() (*ConnectionConfig, error) {
		path := os.Getenv("DATUS_CLICKHOUSE_CONFIG")
		if path == "" {
			path = DefaultConfigFile
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, nil
		}

		return LoadConfigFile(path)
	},
))
