package services

import (
	"kolimeet-service/internal/domain"
)

const (
	RouteMatchPoints    = 50
	DateProximityPoints = 20
	CapacityPoints      = 15

	// MaxScore is the sum of every block.
	MaxScore = RouteMatchPoints + DateProximityPoints + CapacityPoints

	// Route match alone reaches the threshold, so date and capacity only
	// order perfect matches among themselves.
	PerfectMatchThreshold = 50

	DateProximityDays = 3
)

// Score rates how well a trip and a parcel fit each other.
//
// Each block is awarded independently:
//   - route: origin and destination cities equal after FoldLocation
//   - date: departure and deadline at most DateProximityDays calendar days apart
//   - capacity: trip liters cover the parcel's size estimate (unknown sizes count as 0 L)
//
// The route block repeats a condition the candidate query already enforces,
// which makes it a near-constant offset for retrieved candidates.
func Score(trip *domain.Trip, parcel *domain.Parcel) int {
	score := 0

	if domain.FoldLocation(trip.Route.FromCity) == domain.FoldLocation(parcel.Route.FromCity) &&
		domain.FoldLocation(trip.Route.ToCity) == domain.FoldLocation(parcel.Route.ToCity) {
		score += RouteMatchPoints
	}

	if domain.DaysApart(trip.DateDeparture, parcel.Deadline) <= DateProximityDays {
		score += DateProximityPoints
	}

	if trip.FitsVolume(parcel.EstimatedLiters()) {
		score += CapacityPoints
	}

	return score
}

// IsPerfectMatch reports whether a score reaches PerfectMatchThreshold.
func IsPerfectMatch(score int) bool {
	return score >= PerfectMatchThreshold
}
