package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MatchLookupsTotal counts matcher invocations by reference kind and
	// outcome: "ok", "empty", "invalid_reference" or "retrieval_error".
	MatchLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolimeet_match_lookups_total",
		Help: "Total number of match lookups",
	}, []string{"kind", "outcome"})

	// MatchResultsReturned records how many matches a lookup returned.
	MatchResultsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kolimeet_match_results_returned",
		Help:    "Number of matches returned per lookup",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20},
	})

	UnknownParcelSizeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolimeet_unknown_parcel_size_total",
		Help: "Parcels scored with an unrecognized size code",
	}, []string{"size"})

	// OperationDuration records timings reported through Time.
	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kolimeet_operation_duration_seconds",
		Help:    "Duration of timed internal operations",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"op", "outcome"})

	// ListingCacheTotal counts candidate cache lookups: "hit", "miss", "error".
	ListingCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolimeet_listing_cache_total",
		Help: "Candidate cache lookups by result",
	}, []string{"result"})

	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolimeet_perfect_match_notifications_total",
		Help: "Perfect match notifications by outcome",
	}, []string{"outcome"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolimeet_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(
		MatchLookupsTotal,
		MatchResultsReturned,
		UnknownParcelSizeTotal,
		OperationDuration,
		ListingCacheTotal,
		NotificationsTotal,
		HTTPRequestsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
