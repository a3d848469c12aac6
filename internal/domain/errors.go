package domain

import (
	"fmt"
	"strings"
)

// InvalidReferenceError reports a listing that cannot be used as a matching
// reference because a required field is missing or it is not open.
type InvalidReferenceError struct {
	Kind   Kind
	ID     string
	Field  string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing or blank"
	}
	if e.ID == "" {
		return fmt.Sprintf("invalid %s reference: %s: %s", e.Kind, e.Field, reason)
	}
	return fmt.Sprintf("invalid %s reference %q: %s: %s", e.Kind, e.ID, e.Field, reason)
}

func blankRouteField(r Route) string {
	switch {
	case strings.TrimSpace(r.FromCity) == "":
		return "from_city"
	case strings.TrimSpace(r.FromCountry) == "":
		return "from_country"
	case strings.TrimSpace(r.ToCity) == "":
		return "to_city"
	case strings.TrimSpace(r.ToCountry) == "":
		return "to_country"
	}
	return ""
}
