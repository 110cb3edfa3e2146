package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/datusai/datus-clickhouse/pkg/result"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// query runs a single statement. Queries render per --format: frame as a
// table, list as JSON, csv as-is and arrow as a column dump. Other statements
// print the number of affected rows.
//
// Example usage:
//
//	datus-clickhouse query "SELECT name, engine FROM system.tables LIMIT 5"
//	datus-clickhouse query --format list --param db=system \
//		"SELECT name FROM system.tables WHERE database = {db:String}"
//	datus-clickhouse query "ALTER TABLE events DELETE WHERE ts < now() - INTERVAL 30 DAY"
func query(s *Session) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Run a statement",
		ArgsUsage: "SQL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: frame, list, csv or arrow",
				Value:   string(result.FormatFrame),
			},
			&cli.StringSliceFlag{
				Name:    "param",
				Aliases: []string{"p"},
				Usage:   "query parameter as name=value, referenced as {name:Type}",
			},
		},
		Action: s.action(func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error {
			if cmd.Args().Len() != 1 {
				return errors.New("expected exactly one SQL statement")
			}

			sql := cmd.Args().First()
			format := result.OutputFormat(cmd.String("format"))

			params, err := parseParams(cmd.StringSlice("param"))
			if err != nil {
				return err
			}

			w := output(cmd)
			if params != nil {
				out, err := c.ExecuteQuery(ctx, sql, params, format)
				if err != nil {
					return err
				}
				return renderValue(w, out)
			}

			res, err := c.Execute(ctx, sql, format)
			if err != nil {
				return err
			}
			if res.Return != nil {
				return renderValue(w, res.Return)
			}

			_, _ = fmt.Fprintf(w, "OK (%d rows)\n", res.RowCount)
			return nil
		}),
	}
}

// parseParams keeps values as typed on the command line; the server parses
// them according to the {name:Type} placeholder.
func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[strings.TrimSpace(name)] = value
	}
	return params, nil
}
