// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// votesTotal counts every cast by ledger transition (noop, cast_up, switch_to_down...).
	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luggo_votes_total",
		Help: "Total number of votes cast, by ledger transition",
	}, []string{"transition"})

	reviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "luggo_reviews_created_total",
		Help: "Total number of reviews created",
	})

	// placesCreatedTotal counts place resolutions by outcome (created, suffixed, upserted).
	placesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luggo_places_created_total",
		Help: "Total number of place resolutions, by outcome",
	}, []string{"outcome"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "luggo_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "luggo_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func RecordVote(transition string) {
	votesTotal.WithLabelValues(transition).Inc()
}

func RecordReviewCreated() {
	reviewsCreatedTotal.Inc()
}

func RecordPlaceResolved(outcome string) {
	placesCreatedTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest uses the route pattern, not the raw path, to keep label
// cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
