package main

import (
	"errors"
	"fmt"
	"kolimeet-service/internal/adapters/cache"
	"kolimeet-service/internal/app"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis candidate cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Drop every cached candidate set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.RedisAddr == "" {
				return errors.New("REDIS_ADDR is not set")
			}

			rdb, err := app.OpenRedis(cmd.Context(), cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer rdb.Close()

			n, err := cache.NewRedisListingCache(nil, rdb, cfg.CacheTTL).Invalidate(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached candidate sets\n", n)
			return nil
		},
	})

	return cmd
}
