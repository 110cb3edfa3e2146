package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/urfave/cli/v3"
)

// ping verifies that the server is reachable and accepts the credentials.
//
// Example usage:
//
//	datus-clickhouse --host ch.internal --password secret ping
func ping(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check connectivity and credentials",
		Action: s.action(func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error {
			start := time.Now()
			if err := c.TestConnection(ctx); err != nil {
				return err
			}

			cfg := c.Config()
			_, _ = fmt.Fprintf(output(cmd), "ok %s@%s/%s (%s)\n",
				cfg.Username, cfg.Addr(), c.Database(), time.Since(start).Round(time.Millisecond))
			return nil
		}),
	}
}
