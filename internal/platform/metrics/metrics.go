// Package metrics exposes reoptimization and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "route_optimization"

// Recorder implements AttemptRecorder and PipelineObserver on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	Violations          *prometheus.CounterVec
	Attempts            *prometheus.CounterVec
	HandlerDuration     *prometheus.HistogramVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	_ ports.AttemptRecorder  = (*Recorder)(nil)
	_ ports.PipelineObserver = (*Recorder)(nil)
)

func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{registry: registry}

	r.Violations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "route_violations_total",
			Help:      "Quality rule violations detected before a reoptimization attempt",
		},
		[]string{"violation"},
	)

	r.Attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reoptimization_attempts_total",
			Help:      "Reoptimization attempts by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	r.HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "post_optimization_handler_duration_seconds",
			Help:      "Post-optimization handler duration in seconds",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"handler", "status"},
	)

	r.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		r.Violations,
		r.Attempts,
		r.HandlerDuration,
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
	)
	return r
}

func (r *Recorder) RecordViolation(violation domain.Violation) {
	r.Violations.WithLabelValues(string(violation)).Inc()
}

func (r *Recorder) RecordAttempt(action string, outcome ports.AttemptOutcome) {
	r.Attempts.WithLabelValues(action, string(outcome)).Inc()
}

func (r *Recorder) ObserveHandler(handler string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.HandlerDuration.WithLabelValues(handler, status).Observe(duration.Seconds())
}

func (r *Recorder) ObserveHTTP(method, path string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
