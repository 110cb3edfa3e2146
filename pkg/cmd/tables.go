package cmd

import (
	"context"
	"fmt"

	"github.com/datusai/datus-clickhouse/pkg/connector"
	"github.com/urfave/cli/v3"
)

// tables lists the tables of the default database (see --database).
//
// Example usage:
//
//	# Table names
//	datus-clickhouse -d analytics tables
//
//	# Regular views with their CREATE statements
//	datus-clickhouse -d analytics tables --views --ddl
func tables(s *Session) *cli.Command {
	return &cli.Command{
		Name:  "tables",
		Usage: "List tables, views or materialized views",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "views",
				Usage: "list regular views instead of tables",
			},
			&cli.BoolFlag{
				Name:  "materialized",
				Usage: "list materialized views instead of tables",
			},
			&cli.BoolFlag{
				Name:  "ddl",
				Usage: "print CREATE statements",
			},
		},
		Action: s.action(func(ctx context.Context, cmd *cli.Command, c *connector.Connector) error {
			w := output(cmd)

			if cmd.Bool("ddl") {
				var (
					infos []connector.TableInfo
					err   error
				)
				if cmd.Bool("views") || cmd.Bool("materialized") {
					infos, err = c.GetViewsWithDDL(ctx, "")
				} else {
					infos, err = c.GetTablesWithDDL(ctx, "")
				}
				if err != nil {
					return err
				}

				for _, info := range infos {
					_, _ = fmt.Fprintf(w, "-- %s (%s)\n%s\n\n", info.Identifier, info.TableType, info.Definition)
				}
				return nil
			}

			var (
				names []string
				err   error
			)
			switch {
			case cmd.Bool("views"):
				names, err = c.GetViews(ctx, "")
			case cmd.Bool("materialized"):
				names, err = c.GetMaterializedViews(ctx, "")
			default:
				names, err = c.GetTables(ctx, "")
			}
			if err != nil {
				return err
			}

			for _, name := range names {
				_, _ = fmt.Fprintln(w, name)
			}
			return nil
		}),
	}
}
