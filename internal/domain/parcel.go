package domain

import (
	"strings"
	"time"
)

// Size is the categorical volume bucket a sender picks for a parcel.
type Size string

const (
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

var sizeLiters = map[Size]float64{
	SizeSmall:  10,
	SizeMedium: 25,
	SizeLarge:  45,
}

// ParseSize normalizes a stored or submitted size label ("m " -> SizeMedium).
// Unrecognized labels are kept as-is and estimate to 0 L.
func ParseSize(s string) Size {
	return Size(strings.ToUpper(strings.TrimSpace(s)))
}

// SizeLiters returns the volume estimate for a size bucket.
// Unknown codes estimate to 0 liters and known=false.
func SizeLiters(s Size) (liters float64, known bool) {
	liters, known = sizeLiters[s]
	return liters, known
}

// A sender's request to have a parcel carried before a deadline.
type Parcel struct {
	ID       string
	OwnerID  string
	Route    Route
	Deadline time.Time
	Size     Size
	WeightKg float64
	Status   Status
}

// Validate checks that the parcel can serve as a matching reference.
func (p *Parcel) Validate() error {
	if p == nil {
		return &InvalidReferenceError{Kind: KindParcel, Field: "parcel"}
	}
	if field := blankRouteField(p.Route); field != "" {
		return &InvalidReferenceError{Kind: KindParcel, ID: p.ID, Field: field}
	}
	if p.Deadline.IsZero() {
		return &InvalidReferenceError{Kind: KindParcel, ID: p.ID, Field: "deadline"}
	}
	if p.Status != StatusOpen {
		return &InvalidReferenceError{Kind: KindParcel, ID: p.ID, Field: "status", Reason: "listing is " + string(p.Status)}
	}
	return nil
}

// EstimatedLiters is the volume used for capacity checks.
func (p *Parcel) EstimatedLiters() float64 {
	l, _ := SizeLiters(p.Size)
	return l
}
