package main

import (
	"fmt"
	"kolimeet-service/internal/app"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load listings from a JSON seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = cfg.SeedPath
			}

			conn, store, err := app.OpenListings(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			trips, parcels, err := app.SeedListings(cmd.Context(), store, path)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d trips and %d parcels from %s\n", trips, parcels, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "seed file (default SEED_PATH)")

	return cmd
}
