package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Kind identifies which side of the marketplace a listing belongs to.
type Kind string

const (
	KindTrip   Kind = "trip"
	KindParcel Kind = "parcel"
)

// Opposite returns the kind a listing of k is matched against.
func (k Kind) Opposite() Kind {
	if k == KindTrip {
		return KindParcel
	}
	return KindTrip
}

// Lifecycle state of a listing. Only open listings take part in matching;
// the other values are written by the listing management service.
type Status string

const (
	StatusOpen      Status = "open"
	StatusMatched   Status = "matched"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// Route is the origin/destination pair shared by trips and parcels.
type Route struct {
	FromCity    string
	FromCountry string
	ToCity      string
	ToCountry   string
}

var folder = cases.Fold()

// FoldLocation normalizes a city or country name for comparison.
// "  Porto-Novo " and "porto-novo" fold to the same key, as do the composed
// and decomposed spellings of "Bénin".
func FoldLocation(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return folder.String(s)
}

// Folded returns the route with every field passed through FoldLocation.
func (r Route) Folded() Route {
	return Route{
		FromCity:    FoldLocation(r.FromCity),
		FromCountry: FoldLocation(r.FromCountry),
		ToCity:      FoldLocation(r.ToCity),
		ToCountry:   FoldLocation(r.ToCountry),
	}
}

// Matches reports whether both routes describe the same four locations.
func (r Route) Matches(other Route) bool {
	return r.Folded() == other.Folded()
}

func (r Route) String() string {
	return r.FromCity + ", " + r.FromCountry + " -> " + r.ToCity + ", " + r.ToCountry
}

// DaysApart returns the absolute number of calendar days between the UTC
// dates of a and b. Times of day are ignored.
func DaysApart(a, b time.Time) int {
	da := dateOnly(a)
	db := dateOnly(b)

	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
