package clickhouse

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/pkg/errors"
)

// ProductName is reported to the server in the client info block.
const ProductName = "datus-clickhouse"

// Version is the connector version reported alongside ProductName.
var Version = "0.1.0"

type (
	// Conn is the subset of driver.Conn used by this module. A driver.Conn
	// returned by Open satisfies it; tests substitute their own implementation.
	Conn interface {
		Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
		Exec(ctx context.Context, query string, args ...any) error
		Ping(ctx context.Context) error
		Close() error
	}
)

// Open creates a pooled ClickHouse connection from cfg.
//
// No network traffic happens here; the driver dials lazily when the first
// statement is issued. Use Ping (or connector.TestConnection) to verify that
// the server is reachable and the credentials are accepted.
//
// Example:
//
//	cfg, _ := config.New("localhost", 9000, "default", "", "default")
//	conn, err := clickhouse.Open(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Close()
func Open(cfg *config.ConnectionConfig) (driver.Conn, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open connection to %s", cfg.Addr())
	}

	return conn, nil
}

// Options translates a ConnectionConfig into driver options.
func Options(cfg *config.ConnectionConfig) (*clickhouse.Options, error) {
	if cfg == nil {
		return nil, errors.New("connection config is required")
	}

	opts := &clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{cfg.Addr()},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
	opts.ClientInfo.Products = append(opts.ClientInfo.Products, struct {
		Name    string
		Version string
	}{Name: ProductName, Version: Version})

	if cfg.Protocol == config.ProtocolHTTP {
		opts.Protocol = clickhouse.HTTP
	}

	if len(cfg.Settings) > 0 {
		opts.Settings = make(clickhouse.Settings, len(cfg.Settings))
		for k, v := range cfg.Settings {
			opts.Settings[k] = v
		}
	}

	switch cfg.Compression {
	case "lz4":
		opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	case "zstd":
		opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionZSTD}
	}

	if cfg.Secure || cfg.TLS != nil {
		tlsCfg, err := GetTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts.TLS = tlsCfg
	}

	return opts, nil
}
