package cmd

import (
	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/datusai/datus-clickhouse/pkg/registry"
	"go.uber.org/fx"
)

var Module = fx.Module("cli",
	fx.Provide(
		NewSession,
		fx.Annotate(databases, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(ping, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(query, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(sample, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(schema, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(tables, fx.ResultTags(`group:"commands"`)),
	),
	// Publishes "clickhouse" in the default registry for host code sharing the process.
	fx.Invoke(func() { connector.Register(registry.Default) }),
	fx.Invoke(Run),
)
