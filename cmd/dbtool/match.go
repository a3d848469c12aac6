package main

import (
	"encoding/json"
	"fmt"
	"io"
	"kolimeet-service/internal/app"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/services"

	"github.com/spf13/cobra"
)

type matchLine struct {
	ID             string `json:"id"`
	Score          int    `json:"score"`
	IsPerfectMatch bool   `json:"is_perfect_match"`
	Date           string `json:"date"`
}

func matchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "match trip|parcel [id]",
		Short: "Rank matches for a stored listing",
		Long: `Rank matches for a stored listing and print them as JSON.

Examples:
  dbtool match trip trip-001
  dbtool match parcel parcel-004 --limit 3`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.KindTrip), string(domain.KindParcel)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			conn, store, err := app.OpenListings(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			matcher := services.NewMatcher(store, services.WithDefaultMaxResults(cfg.MaxResults))

			var lines []matchLine
			switch domain.Kind(args[0]) {
			case domain.KindTrip:
				trip, err := store.GetTrip(ctx, args[1])
				if err != nil {
					return fmt.Errorf("trip %s: %w", args[1], err)
				}
				res, err := matcher.ParcelsForTrip(ctx, trip, limit)
				if err != nil {
					return err
				}
				for _, m := range res {
					lines = append(lines, matchLine{m.Parcel.ID, m.Score, m.IsPerfectMatch, m.Parcel.Deadline.Format("2006-01-02")})
				}

			case domain.KindParcel:
				parcel, err := store.GetParcel(ctx, args[1])
				if err != nil {
					return fmt.Errorf("parcel %s: %w", args[1], err)
				}
				res, err := matcher.TripsForParcel(ctx, parcel, limit)
				if err != nil {
					return err
				}
				for _, m := range res {
					lines = append(lines, matchLine{m.Trip.ID, m.Score, m.IsPerfectMatch, m.Trip.DateDeparture.Format("2006-01-02")})
				}

			default:
				return fmt.Errorf("unknown listing kind %q, want trip or parcel", args[0])
			}

			return printJSON(cmd.OutOrStdout(), lines)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default MATCH_MAX_RESULTS)")

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
