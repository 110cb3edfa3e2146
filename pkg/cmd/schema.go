package cmd

import (
	"context"
	"strconv"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

func schema(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "schema",
		Usage:     "Describe the columns of a table",
		ArgsUsage: "TABLE",
		Action: s.action(func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error {
			if cmd.Args().Len() != 1 {
				return errors.New("expected exactly one table name")
			}

			cols, err := c.GetSchema(ctx, "", cmd.Args().First())
			if err != nil {
				return err
			}

			rows := make([][]any, len(cols))
			for i, col := range cols {
				rows[i] = []any{
					strconv.Itoa(col.Position),
					col.Name,
					col.Type,
					strconv.FormatBool(col.Nullable),
					strconv.FormatBool(col.PrimaryKey),
					col.Default,
					col.Comment,
				}
			}

			renderTable(output(cmd), []string{"cid", "name", "type", "nullable", "pk", "default", "comment"}, rows)
			return nil
		}),
	}
}
