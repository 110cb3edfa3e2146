package consts

import "time"

const (
	// ConnectorType is the registry key the ClickHouse connector is published under.
	ConnectorType = "clickhouse"

	// DefaultNativePort is the ClickHouse native protocol port
	DefaultNativePort = 9000

	// DefaultHTTPPort is the ClickHouse HTTP interface port
	DefaultHTTPPort = 8123

	// DefaultUsername is used when a configuration omits the username
	DefaultUsername = "default"

	// DefaultDatabase is used when a configuration omits the database
	DefaultDatabase = "default"

	// DefaultDialTimeout bounds establishing a new connection
	DefaultDialTimeout = 10 * time.Second

	// DefaultMaxOpenConns is the pool size handed to the driver
	DefaultMaxOpenConns = 10

	// DefaultMaxIdleConns is the idle pool size handed to the driver
	DefaultMaxIdleConns = 5

	// DefaultClickHouseVersion is the server image tag used by integration tests
	DefaultClickHouseVersion = "25.7"
)

// SystemDatabases are hidden from database listings unless system objects are requested.
var SystemDatabases = []string{"system", "INFORMATION_SCHEMA", "information_schema", "default"}
