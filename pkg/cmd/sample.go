package cmd

import (
	"context"
	"fmt"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/urfave/cli/v3"
)

// sample prints the first rows of the named tables, or of every table in the
// default database when no name is given.
func sample(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "sample",
		Usage:     "Show the first rows of tables",
		ArgsUsage: "[TABLE...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "rows per table",
				Value:   connector.DefaultSampleRows,
			},
		},
		Action: s.action(func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error {
			samples, err := c.GetSampleRows(ctx, "", cmd.Args().Slice(), int(cmd.Int("limit")))
			if err != nil {
				return err
			}

			w := output(cmd)
			for _, sample := range samples {
				_, _ = fmt.Fprintln(w, sample.Identifier)
				renderTable(w, sample.Result.ColumnNames(), sample.Result.Rows)
			}
			return nil
		}),
	}
}
