package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Endpoint labels recorded by the student handlers. Labels identify
// the logical endpoint, never the raw path, to keep cardinality bounded.
const (
	EndpointGetAllStudents = "getAllStudents"
	EndpointGetStudentByID = "getStudentById"
	EndpointSearchByName   = "searchByName"
	EndpointSearchBySchool = "searchBySchool"
	EndpointCreateStudent  = "createStudent"
	EndpointUpdateStudent  = "updateStudent"
	EndpointDeleteStudent  = "deleteStudent"
)

// Metrics holds all Prometheus metrics for the service, backed by a
// private registry so tests can create isolated instances.
type Metrics struct {
	studentRequests prometheus.Counter
	requestDuration *prometheus.HistogramVec
	rateLimitHits   prometheus.Counter
	startTime       prometheus.Gauge
	registry        *prometheus.Registry
}

// TimerHandle marks the start of a timed operation. Obtain one with
// StartTimer and record it with ObserveSince.
type TimerHandle struct {
	start time.Time
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "student"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.studentRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests to student endpoints",
		},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration for student endpoints",
			Buckets: []float64{
				.001, .005, .01, .025, .05,
				.1, .25, .5, 1, 2.5, 5, 10,
			},
		},
		[]string{"endpoint"},
	)

	m.rateLimitHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total number of requests rejected by the rate limiter",
		},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help:      "Start time of the service in unix seconds",
		},
	)

	m.registry.MustRegister(
		m.studentRequests,
		m.requestDuration,
		m.rateLimitHits,
		m.startTime,
	)
	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(
		collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{},
		),
	)

	m.startTime.SetToCurrentTime()

	return m
}

// IncStudentRequests increments the student request counter.
func (m *Metrics) IncStudentRequests() {
	m.studentRequests.Inc()
}

// StartTimer returns a handle marking the current time.
func (m *Metrics) StartTimer() TimerHandle {
	return TimerHandle{start: time.Now()}
}

// ObserveSince records the elapsed time since the handle into the
// duration series named by endpoint. Handlers pair StartTimer and
// ObserveSince via defer so the observation happens on every exit path.
func (m *Metrics) ObserveSince(h TimerHandle, endpoint string) {
	m.requestDuration.WithLabelValues(endpoint).
		Observe(time.Since(h.start).Seconds())
}

// RecordRateLimitHit records a rejected request.
func (m *Metrics) RecordRateLimitHit() {
	m.rateLimitHits.Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		m.registry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
