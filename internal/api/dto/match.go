package dto

// Dates travel as calendar days, "2006-01-02".
const DateLayout = "2006-01-02"

type RouteBody struct {
	FromCity    string `json:"from_city"`
	FromCountry string `json:"from_country"`
	ToCity      string `json:"to_city"`
	ToCountry   string `json:"to_country"`
}

type TripResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id,omitempty"`
	RouteBody
	DateDeparture  string  `json:"date_departure"`
	CapacityLiters float64 `json:"capacity_liters"`
	CapacityKg     float64 `json:"capacity_kg"`
}

type ParcelResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id,omitempty"`
	RouteBody
	Deadline string  `json:"deadline"`
	Size     string  `json:"size"`
	WeightKg float64 `json:"weight_kg"`
}

type ScoredParcelResponse struct {
	Score          int            `json:"score"`
	IsPerfectMatch bool           `json:"is_perfect_match"`
	Parcel         ParcelResponse `json:"parcel"`
}

type ScoredTripResponse struct {
	Score          int          `json:"score"`
	IsPerfectMatch bool         `json:"is_perfect_match"`
	Trip           TripResponse `json:"trip"`
}

// State is "ok" when Matches is non-empty and "empty" otherwise.
type ParcelMatchesResponse struct {
	State   string                 `json:"state"`
	Matches []ScoredParcelResponse `json:"matches"`
}

type TripMatchesResponse struct {
	State   string               `json:"state"`
	Matches []ScoredTripResponse `json:"matches"`
}

// Trip being drafted; it has no id and is never stored.
type PreviewTripRequest struct {
	RouteBody
	DateDeparture  string  `json:"date_departure"`
	CapacityLiters float64 `json:"capacity_liters"`
	CapacityKg     float64 `json:"capacity_kg"`
}

type PreviewParcelRequest struct {
	RouteBody
	Deadline string  `json:"deadline"`
	Size     string  `json:"size"`
	WeightKg float64 `json:"weight_kg"`
}

type OwnerListingResponse struct {
	Kind    string                 `json:"kind"`
	ID      string                 `json:"id"`
	State   string                 `json:"state"`
	Error   string                 `json:"error,omitempty"`
	Parcels []ScoredParcelResponse `json:"parcels,omitempty"`
	Trips   []ScoredTripResponse   `json:"trips,omitempty"`
}

type OwnerMatchesResponse struct {
	OwnerID        string                 `json:"owner_id"`
	PerfectMatches int                    `json:"perfect_matches"`
	Listings       []OwnerListingResponse `json:"listings"`
}
