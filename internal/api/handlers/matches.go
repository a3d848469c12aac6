package handlers

import (
	"errors"
	"fmt"
	"kolimeet-service/internal/api/dto"
	"kolimeet-service/internal/domain"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"
	"kolimeet-service/internal/services"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MatchHandler serves match lookups for stored and draft listings.
type MatchHandler struct {
	Matcher  *services.Matcher
	Reader   ports.ListingReader
	Notifier ports.MatchNotifier

	// Concurrent lookups per owner summary.
	OwnerConcurrency int
}

func (h *MatchHandler) TripMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, services.CandidateCeiling)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.Reader.GetTrip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}

	matches, err := h.Matcher.ParcelsForTrip(r.Context(), trip, limit)
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}
	services.NotifyPerfectParcels(r.Context(), h.Notifier, trip, matches)

	writeJSON(w, r, http.StatusOK, parcelMatches(matches))
}

func (h *MatchHandler) ParcelMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, services.CandidateCeiling)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	parcel, err := h.Reader.GetParcel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}

	matches, err := h.Matcher.TripsForParcel(r.Context(), parcel, limit)
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}
	services.NotifyPerfectTrips(r.Context(), h.Notifier, parcel, matches)

	writeJSON(w, r, http.StatusOK, tripMatches(matches))
}

// PreviewTrip scores parcels against a trip that has not been posted yet.
func (h *MatchHandler) PreviewTrip(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, services.CandidateCeiling)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.PreviewTripRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	departure, err := parseDay(req.DateDeparture)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "date_departure: "+err.Error())
		return
	}

	trip := &domain.Trip{
		Route:          routeFromBody(req.RouteBody),
		DateDeparture:  departure,
		CapacityLiters: req.CapacityLiters,
		CapacityKg:     req.CapacityKg,
		Status:         domain.StatusOpen,
	}

	matches, err := h.Matcher.ParcelsForTrip(r.Context(), trip, limit)
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, parcelMatches(matches))
}

// PreviewParcel scores trips against a parcel that has not been posted yet.
func (h *MatchHandler) PreviewParcel(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, services.CandidateCeiling)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req dto.PreviewParcelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	deadline, err := parseDay(req.Deadline)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "deadline: "+err.Error())
		return
	}

	parcel := &domain.Parcel{
		Route:    routeFromBody(req.RouteBody),
		Deadline: deadline,
		Size:     domain.ParseSize(req.Size),
		WeightKg: req.WeightKg,
		Status:   domain.StatusOpen,
	}

	matches, err := h.Matcher.TripsForParcel(r.Context(), parcel, limit)
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, tripMatches(matches))
}

// OwnerMatches summarizes matches for every open listing of one owner.
// Lookup failures on individual listings are reported inline.
func (h *MatchHandler) OwnerMatches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, services.CandidateCeiling)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := services.OwnerMatches(r.Context(), h.Reader, h.Matcher, mux.Vars(r)["id"], limit, h.OwnerConcurrency)
	if err != nil {
		h.writeMatchError(w, r, err)
		return
	}

	res := dto.OwnerMatchesResponse{
		OwnerID:        summary.OwnerID,
		PerfectMatches: summary.PerfectMatches(),
		Listings:       make([]dto.OwnerListingResponse, 0, len(summary.Listings)),
	}
	for _, l := range summary.Listings {
		entry := dto.OwnerListingResponse{Kind: string(l.Kind)}

		switch l.Kind {
		case domain.KindTrip:
			entry.ID = l.Trip.ID
			entry.Parcels = parcelMatches(l.Parcels).Matches
			entry.State = stateOf(len(l.Parcels))
		case domain.KindParcel:
			entry.ID = l.Parcel.ID
			entry.Trips = tripMatches(l.Trips).Matches
			entry.State = stateOf(len(l.Trips))
		}
		if l.Err != nil {
			entry.State = "error"
			entry.Error = publicMessage(l.Err)
		}

		res.Listings = append(res.Listings, entry)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *MatchHandler) writeMatchError(w http.ResponseWriter, r *http.Request, err error) {
	var ire *domain.InvalidReferenceError
	var re *services.RetrievalError

	switch {
	case errors.Is(err, ports.ErrListingNotFound):
		writeError(w, r, http.StatusNotFound, "listing not found")
	case errors.As(err, &ire):
		writeError(w, r, http.StatusUnprocessableEntity, ire.Error())
	case errors.As(err, &re):
		zap.L().Error("match retrieval failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusServiceUnavailable, publicMessage(err))
	default:
		zap.L().Error("match lookup failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// publicMessage is the error text safe to show to clients.
func publicMessage(err error) string {
	var ire *domain.InvalidReferenceError
	var re *services.RetrievalError

	switch {
	case errors.As(err, &ire):
		return ire.Error()
	case errors.As(err, &re):
		return "couldn't load matches"
	}
	return "internal server error"
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("is required")
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be formatted as %s", dto.DateLayout)
	}
	return t, nil
}

func routeFromBody(b dto.RouteBody) domain.Route {
	return domain.Route{
		FromCity:    b.FromCity,
		FromCountry: b.FromCountry,
		ToCity:      b.ToCity,
		ToCountry:   b.ToCountry,
	}
}

func routeBody(r domain.Route) dto.RouteBody {
	return dto.RouteBody{
		FromCity:    r.FromCity,
		FromCountry: r.FromCountry,
		ToCity:      r.ToCity,
		ToCountry:   r.ToCountry,
	}
}

func stateOf(n int) string {
	if n == 0 {
		return "empty"
	}
	return "ok"
}

func parcelMatches(matches []services.ScoredParcel) dto.ParcelMatchesResponse {
	res := dto.ParcelMatchesResponse{
		State:   stateOf(len(matches)),
		Matches: make([]dto.ScoredParcelResponse, 0, len(matches)),
	}
	for _, m := range matches {
		p := m.Parcel
		res.Matches = append(res.Matches, dto.ScoredParcelResponse{
			Score:          m.Score,
			IsPerfectMatch: m.IsPerfectMatch,
			Parcel: dto.ParcelResponse{
				ID:        p.ID,
				OwnerID:   p.OwnerID,
				RouteBody: routeBody(p.Route),
				Deadline:  p.Deadline.Format(dto.DateLayout),
				Size:      string(p.Size),
				WeightKg:  p.WeightKg,
			},
		})
	}
	return res
}

func tripMatches(matches []services.ScoredTrip) dto.TripMatchesResponse {
	res := dto.TripMatchesResponse{
		State:   stateOf(len(matches)),
		Matches: make([]dto.ScoredTripResponse, 0, len(matches)),
	}
	for _, m := range matches {
		t := m.Trip
		res.Matches = append(res.Matches, dto.ScoredTripResponse{
			Score:          m.Score,
			IsPerfectMatch: m.IsPerfectMatch,
			Trip: dto.TripResponse{
				ID:             t.ID,
				OwnerID:        t.OwnerID,
				RouteBody:      routeBody(t.Route),
				DateDeparture:  t.DateDeparture.Format(dto.DateLayout),
				CapacityLiters: t.CapacityLiters,
				CapacityKg:     t.CapacityKg,
			},
		})
	}
	return res
}
