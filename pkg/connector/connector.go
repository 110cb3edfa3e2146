package connector

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/datusai/datus-clickhouse/pkg/clickhouse"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/datusai/datus-clickhouse/pkg/consts"
	"github.com/datusai/datus-clickhouse/pkg/registry"
	"github.com/datusai/datus-clickhouse/pkg/utils"
	"github.com/pkg/errors"
)

type (
	// Connector exposes query execution, schema introspection and DDL/CRUD
	// helpers against a single ClickHouse instance.
	//
	// Every method is synchronous and makes one or a small, fixed number of
	// round trips. Connection pooling belongs to the driver; the Connector adds
	// no locking of its own, so SwitchContext must not race with other calls.
	Connector struct {
		cfg      config.ConnectionConfig
		conn     clickhouse.Conn
		open     Opener
		database string
		logger   *slog.Logger
		version  *clickhouse.VersionInfo
	}

	// Opener creates a connection for a configuration.
	Opener func(*config.ConnectionConfig) (clickhouse.Conn, error)

	// Option configures a Connector.
	Option func(*Connector)
)

// WithLogger sets the logger used for statement level debug logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConn uses an existing connection instead of opening one. SwitchContext
// keeps using this connection and only changes the default database.
func WithConn(conn clickhouse.Conn) Option {
	return func(c *Connector) {
		c.conn = conn
		c.open = nil
	}
}

// WithOpener replaces the function used to open connections.
func WithOpener(open Opener) Option {
	return func(c *Connector) {
		c.open = open
	}
}

// New validates cfg and opens a pooled connection. No network traffic happens
// until the first call; use TestConnection to verify connectivity.
//
// Example:
//
//	cfg, _ := config.New("localhost", 9000, "default", "", "analytics")
//	conn, err := connector.New(cfg, connector.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
func New(cfg *config.ConnectionConfig, opts ...Option) (*Connector, error) {
	if cfg == nil {
		return nil, newError(KindConfiguration, "connect", "", &config.ConfigurationError{Reason: "connection config is required"})
	}
	if err := cfg.Validate(); err != nil {
		return nil, classify("connect", cfg.Addr(), err, KindConfiguration)
	}

	c := &Connector{
		cfg:      *cfg,
		open:     openConn,
		database: cfg.Database,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.conn == nil {
		conn, err := c.open(&c.cfg)
		if err != nil {
			return nil, classify("connect", c.cfg.Addr(), err, KindConnection)
		}
		c.conn = conn
	}

	return c, nil
}

// FromMap builds a Connector from a structured configuration block such as the
// database section of a host YAML file.
func FromMap(values map[string]any, opts ...Option) (*Connector, error) {
	cfg, err := config.FromMap(values)
	if err != nil {
		return nil, classify("connect", "", err, KindConfiguration)
	}
	return New(cfg, opts...)
}

// Register publishes the connector under consts.ConnectorType.
func Register(reg *registry.Registry) {
	reg.Register(consts.ConnectorType, func(values map[string]any, logger *slog.Logger) (registry.Connector, error) {
		c, err := FromMap(values, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// Config returns a copy of the configuration the connector was built with.
func (c *Connector) Config() config.ConnectionConfig {
	return c.cfg
}

// Database returns the current default database.
func (c *Connector) Database() string {
	return c.database
}

// TestConnection pings the server and runs a trivial query.
//
// Failures are reported as a KindConnection Error whose Reason is ReasonAuth
// when the server rejected the credentials and ReasonUnreachable when the
// server could not be reached.
func (c *Connector) TestConnection(ctx context.Context) error {
	start := time.Now()
	target := c.cfg.Addr()

	if err := c.conn.Ping(ctx); err != nil {
		c.logger.Warn("connection test failed", "target", target, "error", err)
		return classify("test_connection", target, err, KindConnection)
	}

	rows, err := c.conn.Query(ctx, "SELECT 1")
	if err != nil {
		return classify("test_connection", target, err, KindConnection)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return classify("test_connection", target, err, KindConnection)
	}

	c.logger.Debug("connection test succeeded", "target", target, "duration", time.Since(start))
	return nil
}

// SwitchContext makes database the default for subsequent calls. The database
// must exist. When the connector owns its connection, it is reopened against
// the new database so unqualified names in raw SQL resolve there too.
func (c *Connector) SwitchContext(ctx context.Context, database string) error {
	if database == "" {
		return newError(KindConfiguration, "switch_context", "", &config.ConfigurationError{Field: "database", Reason: "is required"})
	}
	if database == c.database {
		return nil
	}

	ok, err := clickhouse.DatabaseExists(ctx, c.conn, database)
	if err != nil {
		return classify("switch_context", database, err, KindIntrospection)
	}
	if !ok {
		return newError(KindIntrospection, "switch_context", database, errors.Errorf("database %s does not exist", database))
	}

	if c.open != nil {
		next := c.cfg
		next.Database = database

		conn, err := c.open(&next)
		if err != nil {
			return classify("switch_context", database, err, KindConnection)
		}
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("failed to close previous connection", "error", err)
		}
		c.conn = conn
		c.cfg = next
	}

	c.logger.Debug("switched database", "from", c.database, "to", database)
	c.database = database
	return nil
}

// FullName returns the backticked, database qualified name of a table. The
// database prefix is omitted when database is empty.
//
// Example:
//
//	c.FullName("mydb", "mytable") // `mydb`.`mytable`
//	c.FullName("", "mytable")     // `mytable`
func (c *Connector) FullName(database, table string) string {
	return utils.BacktickQualifiedName(database, table)
}

// Identifier returns the plain dotted name of a table, used as a stable key in
// metadata listings.
//
// Example:
//
//	c.Identifier("mydb", "mytable") // mydb.mytable
func (c *Connector) Identifier(database, table string) string {
	return utils.DottedName(database, table)
}

// Close releases the connection pool.
func (c *Connector) Close() error {
	if c.conn == nil {
		return nil
	}
	return errors.Wrap(c.conn.Close(), "failed to close clickhouse connection")
}

func (c *Connector) databaseOrDefault(database string) string {
	if database != "" {
		return database
	}
	return c.database
}

// serverVersion returns the cached server version, querying it once.
func (c *Connector) serverVersion(ctx context.Context) (*clickhouse.VersionInfo, error) {
	if c.version != nil {
		return c.version, nil
	}

	v, err := clickhouse.GetVersion(ctx, c.conn)
	if err != nil {
		return nil, err
	}
	c.version = v
	return v, nil
}

func openConn(cfg *config.ConnectionConfig) (clickhouse.Conn, error) {
	return clickhouse.Open(cfg)
}
