package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/datusai/datus-clickhouse/pkg/consts"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	nativePort = nat.Port("9000/tcp")
	httpPort   = nat.Port("8123/tcp")
)

type (
	// DockerOptions represents options for running ClickHouse in Docker
	DockerOptions struct {
		// Version is the ClickHouse image tag (default: consts.DefaultClickHouseVersion)
		Version string

		// ConfigDir is an optional config.d directory to mount. Relative paths are
		// resolved against the working directory.
		ConfigDir string

		// Username and Password of the server's default user (default: "default"
		// with an empty password)
		Username string
		Password string
	}

	// Container runs a disposable ClickHouse server for integration tests and
	// local experiments.
	Container struct {
		options   DockerOptions
		container *clickhouse.ClickHouseContainer
	}
)

// New creates a new Docker container with default options
//
// Example:
//
//	container := docker.New()
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
func New() *Container {
	return NewWithOptions(DockerOptions{})
}

// NewWithOptions creates a new Docker container with custom options
//
// Example:
//
//	container := docker.NewWithOptions(docker.DockerOptions{
//		Version:  "24.8",
//		Password: "secret",
//	})
func NewWithOptions(opts DockerOptions) *Container {
	if opts.Version == "" {
		opts.Version = consts.DefaultClickHouseVersion
	}
	if opts.Username == "" {
		opts.Username = consts.DefaultUsername
	}

	return &Container{options: opts}
}

// Start starts the ClickHouse container and waits until the HTTP interface
// answers.
func (c *Container) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	customizers := []testcontainers.ContainerCustomizer{
		clickhouse.WithUsername(c.options.Username),
		clickhouse.WithPassword(c.options.Password),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			5*time.Minute,
			wait.
				NewHTTPStrategy("/ping").
				WithPort(httpPort).
				WithStatusCodeMatcher(func(status int) bool {
					return status == 200
				}),
		),
	}

	if c.options.ConfigDir != "" {
		absConfigDir, err := filepath.Abs(c.options.ConfigDir)
		if err != nil {
			return errors.Wrapf(err, "failed to get absolute path for ConfigDir: %s", c.options.ConfigDir)
		}

		customizers = append(
			customizers,
			testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) {
				hostConfig.Mounts = []mount.Mount{
					{
						Type:     mount.TypeBind,
						Source:   absConfigDir,
						Target:   "/etc/clickhouse-server/config.d",
						ReadOnly: true,
					},
				}
			}),
		)
	}

	ch, err := clickhouse.Run(ctx,
		fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", c.options.Version),
		customizers...,
	)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse container")
	}

	c.container = ch
	return nil
}

// Stop stops and removes the ClickHouse Docker container
func (c *Container) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil

	if err != nil {
		return errors.Wrap(err, "failed to stop ClickHouse container")
	}

	return nil
}

// ConnectionConfig returns a native protocol configuration pointing at the
// container's mapped port.
//
// Example:
//
//	cfg, err := container.ConnectionConfig(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	conn, err := connector.New(cfg)
func (c *Container) ConnectionConfig(ctx context.Context) (*config.ConnectionConfig, error) {
	return c.connectionConfig(ctx, config.ProtocolNative, nativePort)
}

// HTTPConnectionConfig is like ConnectionConfig but targets the HTTP interface.
func (c *Container) HTTPConnectionConfig(ctx context.Context) (*config.ConnectionConfig, error) {
	return c.connectionConfig(ctx, config.ProtocolHTTP, httpPort)
}

// IsRunning returns true if the container is currently running
func (c *Container) IsRunning() bool {
	return c.container != nil
}

func (c *Container) connectionConfig(ctx context.Context, protocol string, port nat.Port) (*config.ConnectionConfig, error) {
	if c.container == nil {
		return nil, errors.New("container is not running")
	}

	host, err := c.container.Host(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get container host")
	}

	mapped, err := c.container.MappedPort(ctx, port)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get mapped port for %s", port)
	}

	p, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid mapped port %q", mapped.Port())
	}

	cfg, err := config.New(host, p, c.options.Username, c.options.Password, consts.DefaultDatabase)
	if err != nil {
		return nil, err
	}
	cfg.Protocol = protocol
	return cfg, nil
}
