package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Session    *Session
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the datus-clickhouse CLI with the command-line
// arguments from p. The application exits with code 1 when the command fails.
//
// Example usage:
//
//	datus-clickhouse --host ch.internal --database analytics tables
//	datus-clickhouse query --format list "SELECT version()"
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := newApp(p.Session, p.Version.Version, p.Commands)

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func newApp(s *Session, version string, commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name:  "datus-clickhouse",
		Usage: "Inspect and query ClickHouse through the datus connector",
		Description: `datus-clickhouse exercises the ClickHouse connector used by the datus
agent: connection checks, metadata introspection and ad hoc queries.`,
		Version: version,
		Flags:   connectionFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelInfo
			if cmd.Bool("debug") {
				level = slog.LevelDebug
			}

			var w io.Writer = os.Stderr
			if cmd.Root().ErrWriter != nil {
				w = cmd.Root().ErrWriter
			}

			s.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
			return ctx, nil
		},
		Commands: commands,
	}
}

func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "ClickHouse host",
			Value:   "localhost",
			Sources: cli.EnvVars("CLICKHOUSE_HOST"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.IntFlag{
			Name:        "port",
			Usage:       "ClickHouse port",
			DefaultText: "9000 (native) or 8123 (http)",
			Sources:     cli.EnvVars("CLICKHOUSE_PORT"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "user to authenticate as",
			Value:   "default",
			Sources: cli.EnvVars("CLICKHOUSE_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "password of the user",
			Sources: cli.EnvVars("CLICKHOUSE_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "default database",
			Value:   "default",
			Sources: cli.EnvVars("CLICKHOUSE_DATABASE"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:  "protocol",
			Usage: "wire protocol, native or http",
			Value: "native",
		},
		&cli.BoolFlag{
			Name:  "secure",
			Usage: "connect with TLS",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "log executed statements to stderr",
		},
	}
}
