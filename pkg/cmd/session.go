package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/datusai/datus-clickhouse/pkg/config"
	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Session carries what every command needs to reach the server: the
// configuration loaded at startup (nil when there is no config file), extra
// connector options and the logger set up from the global flags.
type Session struct {
	Config  *config.ConnectionConfig
	Options []connector.Option
	Logger  *slog.Logger
}

// NewSession creates a Session from the configuration provided by config.Module.
func NewSession(cfg *config.ConnectionConfig) *Session {
	return &Session{
		Config: cfg,
		Logger: slog.Default(),
	}
}

// Connect builds a connector from the loaded configuration and the connection
// flags. Flags given explicitly win over the file; without a file every flag,
// including its default, is used.
func (s *Session) Connect(cmd *cli.Command) (*connector.Connector, error) {
	values, err := s.values(cmd)
	if err != nil {
		return nil, err
	}

	opts := append([]connector.Option{connector.WithLogger(s.Logger)}, s.Options...)
	return connector.FromMap(values, opts...)
}

// With connects, runs fn and closes the connection.
func (s *Session) With(cmd *cli.Command, fn func(*connector.Connector) error) error {
	c, err := s.Connect(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return fn(c)
}

func (s *Session) values(cmd *cli.Command) (map[string]any, error) {
	values := map[string]any{}
	if s.Config != nil {
		data, err := yaml.Marshal(s.Config)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode connection config")
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, errors.Wrap(err, "failed to decode connection config")
		}
	}

	useFlag := func(name string) bool {
		return s.Config == nil || cmd.IsSet(name)
	}

	for _, name := range []string{"host", "username", "password", "database", "protocol"} {
		if v := cmd.String(name); useFlag(name) && v != "" {
			values[name] = v
		}
	}
	if port := cmd.Int("port"); useFlag("port") && port > 0 {
		values["port"] = port
	}
	if cmd.IsSet("secure") {
		values["secure"] = cmd.Bool("secure")
	}

	return values, nil
}

// output returns the writer commands print results to.
func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// action adapts a connector operation to a cli action.
func (s *Session) action(fn func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return s.With(cmd, func(c *connector.Connector) error {
			return fn(ctx, cmd, c)
		})
	}
}
