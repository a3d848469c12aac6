package api

import (
	"kolimeet-service/internal/api/handlers"
	"kolimeet-service/internal/platform/obs"
	"kolimeet-service/internal/ports"
	"kolimeet-service/internal/services"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterDeps struct {
	Matcher          *services.Matcher
	Reader           ports.ListingReader
	Notifier         ports.MatchNotifier // nil disables perfect match notifications
	OwnerConcurrency int
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	h := &handlers.MatchHandler{
		Matcher:          deps.Matcher,
		Reader:           deps.Reader,
		Notifier:         deps.Notifier,
		OwnerConcurrency: deps.OwnerConcurrency,
	}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/trips/{id}/matches", h.TripMatches).Methods(http.MethodGet)
	r.HandleFunc("/parcels/{id}/matches", h.ParcelMatches).Methods(http.MethodGet)
	r.HandleFunc("/owners/{id}/matches", h.OwnerMatches).Methods(http.MethodGet)
	r.HandleFunc("/matches/preview/trip", h.PreviewTrip).Methods(http.MethodPost)
	r.HandleFunc("/matches/preview/parcel", h.PreviewParcel).Methods(http.MethodPost)

	r.Use(requestIDMiddleware, loggingMiddleware)

	return r
}
