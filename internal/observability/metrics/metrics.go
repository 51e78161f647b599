package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salestrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salestrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salestrack_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	visitsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salestrack_visits_recorded_total",
		Help: "Visits recorded by resolved client classification",
	}, []string{"client_type"})

	persistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salestrack_persistence_failures_total",
		Help: "Swallowed persistence failures by operation",
	}, []string{"op"})

	geolocationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salestrack_geolocation_requests_total",
		Help: "Geolocation requests by outcome",
	}, []string{"result"})

	rosterSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "salestrack_roster_size",
		Help: "Number of records held in each roster",
	}, []string{"roster"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt ("success" or "failure")
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveVisit counts a recorded visit by its client type
func ObserveVisit(clientType string) {
	visitsRecorded.WithLabelValues(clientType).Inc()
}

// ObservePersistenceFailure counts a logged-and-swallowed storage error
func ObservePersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}

// ObserveGeolocation counts a geolocation request outcome
func ObserveGeolocation(result string) {
	geolocationRequests.WithLabelValues(result).Inc()
}

// SetRosterSizes publishes the current roster lengths
func SetRosterSizes(users, visits int) {
	rosterSize.WithLabelValues("users").Set(float64(users))
	rosterSize.WithLabelValues("visits").Set(float64(visits))
}
