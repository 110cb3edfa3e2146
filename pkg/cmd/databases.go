package cmd

import (
	"context"
	"fmt"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/urfave/cli/v3"
)

func databases(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "databases",
		Usage: "List databases",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "system",
				Usage: "include system, information_schema and default",
			},
		},
		Action: s.action(func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error {
			names, err := c.GetDatabases(ctx, cmd.Bool("system"))
			if err != nil {
				return err
			}

			w := output(cmd)
			for _, name := range names {
				_, _ = fmt.Fprintln(w, name)
			}
			return nil
		}),
	}
}
