package domain

import "time"

// A traveler's offer of spare luggage capacity on a given route and date.
// Trips are owned by the listing management service and are read-only here.
type Trip struct {
	ID             string
	OwnerID        string
	Route          Route
	DateDeparture  time.Time
	CapacityLiters float64
	CapacityKg     float64
	Status         Status
}

// Validate checks that the trip can serve as a matching reference.
func (t *Trip) Validate() error {
	if t == nil {
		return &InvalidReferenceError{Kind: KindTrip, Field: "trip"}
	}
	if field := blankRouteField(t.Route); field != "" {
		return &InvalidReferenceError{Kind: KindTrip, ID: t.ID, Field: field}
	}
	if t.DateDeparture.IsZero() {
		return &InvalidReferenceError{Kind: KindTrip, ID: t.ID, Field: "date_departure"}
	}
	if t.Status != StatusOpen {
		return &InvalidReferenceError{Kind: KindTrip, ID: t.ID, Field: "status", Reason: "listing is " + string(t.Status)}
	}
	return nil
}

// FitsVolume reports whether the remaining capacity can hold the given volume.
func (t *Trip) FitsVolume(liters float64) bool {
	return t.CapacityLiters >= liters
}
