package main

import (
	"fmt"
	"kolimeet-service/internal/app"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the listing schema up to date",
		Long: `Bring the listing schema up to date.

Postgres runs the embedded golang-migrate migrations; SQLite creates the
tables and folded route key columns when they are missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := app.OpenListings(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
