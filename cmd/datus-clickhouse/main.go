package main

import (
	"context"
	"os"

	"github.com/datusai/datus-clickhouse/pkg/cmd"
	"github.com/datusai/datus-clickhouse/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	fx.New(
		fx.Supply(
			os.Args,
			fx.Annotate(context.Background(), fx.As(new(context.Context))),
			&cmd.Version{
				Version:   version,
				Commit:    commit,
				Timestamp: date,
			},
		),
		config.Module,
		cmd.Module,
		fx.NopLogger,
	).Run()
}
