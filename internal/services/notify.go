package services

import (
	"context"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"
	"time"

	"go.uber.org/zap"
)

// NotifyPerfectParcels tells the trip owner about perfect parcel matches.
// A nil notifier or a result without perfect matches is a no-op, and
// delivery failures are logged rather than returned.
func NotifyPerfectParcels(ctx context.Context, notifier ports.MatchNotifier, trip *domain.Trip, matches []ScoredParcel) {
	ids := make([]string, 0, len(matches))
	top := 0
	for _, m := range matches {
		if m.IsPerfectMatch {
			ids = append(ids, m.Parcel.ID)
			top = max(top, m.Score)
		}
	}

	notify(ctx, notifier, ports.PerfectMatchEvent{
		ReferenceKind: domain.KindTrip,
		ReferenceID:   trip.ID,
		OwnerID:       trip.OwnerID,
		MatchedIDs:    ids,
		TopScore:      top,
	})
}

// NotifyPerfectTrips is NotifyPerfectParcels for a parcel reference.
func NotifyPerfectTrips(ctx context.Context, notifier ports.MatchNotifier, parcel *domain.Parcel, matches []ScoredTrip) {
	ids := make([]string, 0, len(matches))
	top := 0
	for _, m := range matches {
		if m.IsPerfectMatch {
			ids = append(ids, m.Trip.ID)
			top = max(top, m.Score)
		}
	}

	notify(ctx, notifier, ports.PerfectMatchEvent{
		ReferenceKind: domain.KindParcel,
		ReferenceID:   parcel.ID,
		OwnerID:       parcel.OwnerID,
		MatchedIDs:    ids,
		TopScore:      top,
	})
}

func notify(ctx context.Context, notifier ports.MatchNotifier, event ports.PerfectMatchEvent) {
	if notifier == nil || len(event.MatchedIDs) == 0 {
		return
	}
	// Unsaved previews have no owner to notify.
	if event.OwnerID == "" || event.ReferenceID == "" {
		obs.NotificationsTotal.WithLabelValues("skipped").Inc()
		return
	}

	event.OccurredAt = time.Now().UTC()

	if err := notifier.NotifyPerfectMatches(ctx, event); err != nil {
		obs.NotificationsTotal.WithLabelValues("error").Inc()
		zap.L().Warn("perfect match notification failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("reference_id", event.ReferenceID),
			zap.Error(err),
		)
		return
	}
	obs.NotificationsTotal.WithLabelValues("sent").Inc()
}
