package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	requestsTotal      *prometheus.CounterVec
	latencySeconds     *prometheus.HistogramVec
	authAttemptsTotal  *prometheus.CounterVec
	auditEntriesTotal  *prometheus.CounterVec
	requestErrorsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regdocgpt_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regdocgpt_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regdocgpt_request_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		authAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regdocgpt_auth_attempts_total",
			Help: "Registration and login attempts by operation and outcome.",
		}, []string{"operation", "result"})

		auditEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "regdocgpt_audit_entries_total",
			Help: "Audit append attempts by outcome.",
		}, []string{"result"})

		prometheus.MustRegister(requestsTotal, latencySeconds, requestErrorsTotal, authAttemptsTotal, auditEntriesTotal)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// RequestErrors exposes the counter for error responses.
func RequestErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}

// AuthAttempts exposes the counter for registration and login outcomes.
func AuthAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return authAttemptsTotal
}

// AuditEntries exposes the counter for audit append outcomes.
func AuditEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEntriesTotal
}
