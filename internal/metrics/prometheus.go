package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the ingestion metrics and the registry they live on.
type Manager struct {
	namespace   string
	subsystem   string
	buckets     []float64
	constLabels map[string]string
	registry    *prometheus.Registry

	sessions          *prometheus.CounterVec
	rows              *prometheus.CounterVec
	extractionMisses  *prometheus.CounterVec
	stepDuration      *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpRequestTiming *prometheus.HistogramVec
}

// NewManager creates a manager with its metrics registered.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "hrv",
		subsystem: "ingest",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sessions_total",
		Help:        "Sessions processed, by outcome",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.rows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_total",
		Help:        "Rows offered to storage, by record set and outcome",
		ConstLabels: m.constLabels,
	}, []string{"table", "outcome"})

	m.extractionMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "extraction_misses_total",
		Help:        "Report fields that could not be extracted, by document kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.stepDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "step_duration_seconds",
		Help:        "Duration of record set writes",
		Buckets:     m.buckets,
		ConstLabels: m.constLabels,
	}, []string{"step"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests by route, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"route", "method", "status_code"})

	m.httpRequestTiming = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration",
		Buckets:     m.buckets,
		ConstLabels: m.constLabels,
	}, []string{"route", "method"})
}

// SessionProcessed counts one session outcome.
func (m *Manager) SessionProcessed(status string) {
	m.sessions.WithLabelValues(status).Inc()
}

// RowsWritten counts n rows offered to table with the given outcome.
func (m *Manager) RowsWritten(table, outcome string, n int) {
	m.rows.WithLabelValues(table, outcome).Add(float64(n))
}

// ExtractionMiss counts one unextracted report field.
func (m *Manager) ExtractionMiss(kind string) {
	m.extractionMisses.WithLabelValues(kind).Inc()
}

// ObserveStep records the duration of a record set write.
func (m *Manager) ObserveStep(step string, d time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestTiming.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
