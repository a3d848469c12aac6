package ports

import (
	"context"
	"kolimeet-service/internal/domain"
	"time"
)

// A reference listing whose lookup surfaced at least one perfect match.
type PerfectMatchEvent struct {
	ReferenceKind domain.Kind `json:"reference_kind"`
	ReferenceID   string      `json:"reference_id"`
	OwnerID       string      `json:"owner_id"`
	MatchedIDs    []string    `json:"matched_ids"`
	TopScore      int         `json:"top_score"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

// Contract for the push notification provider.
type MatchNotifier interface {
	NotifyPerfectMatches(ctx context.Context, event PerfectMatchEvent) error
}
