package observability

import (
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	studentRequestsTotal  *prometheus.CounterVec
	studentLatencySeconds *prometheus.HistogramVec
	studentErrorsTotal    *prometheus.CounterVec
	stepsRenderedTotal    *prometheus.CounterVec
	stepsCacheTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the steps API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		studentRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "student_requests_total",
			Help: "Total number of student API requests served.",
		}, []string{"method", "route", "status"})

		studentLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "student_latency_seconds",
			Help:    "Latency distribution for student API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		studentErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "student_errors_total",
			Help: "Total number of error responses returned by student endpoints.",
		}, []string{"method", "route", "status"})

		stepsRenderedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_steps_rendered_total",
			Help: "Submission step ladders computed, by display state.",
		}, []string{"state", "collapsed"})

		stepsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_steps_cache_total",
			Help: "Step ladder cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(studentRequestsTotal, studentLatencySeconds, studentErrorsTotal, stepsRenderedTotal, stepsCacheTotal)
	})
}

// StudentRequests exposes the counter for student requests.
func StudentRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return studentRequestsTotal
}

// StudentLatency exposes the latency histogram for student requests.
func StudentLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return studentLatencySeconds
}

// StudentErrors exposes the counter for student error responses.
func StudentErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return studentErrorsTotal
}

// ObserveLadder records one computed ladder.
func ObserveLadder(state string, collapsed bool) {
	RegisterMetrics()
	stepsRenderedTotal.WithLabelValues(state, strconv.FormatBool(collapsed)).Inc()
}

// ObserveCache records a ladder cache lookup result ("hit", "miss" or "error").
func ObserveCache(result string) {
	RegisterMetrics()
	stepsCacheTotal.WithLabelValues(result).Inc()
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
