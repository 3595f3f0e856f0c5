package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "furnace_trends"

// Pipeline outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics owns its own registry so several instances can coexist in tests.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sampled  prometheus.Counter
	dropped  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of one pipeline run, query included.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"pipeline"}),
		sampled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sampled_points_total",
			Help:      "Points returned by the window sampler.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_points_total",
			Help:      "Points dropped for an unusable timestamp or value.",
		}),
	}
	m.registry.MustRegister(m.runs, m.duration, m.sampled, m.dropped)
	return m
}

func (m *Metrics) ObserveRun(pipeline, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(pipeline, outcome).Inc()
	m.duration.WithLabelValues(pipeline).Observe(d.Seconds())
}

func (m *Metrics) AddSampled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sampled.Add(float64(n))
}

func (m *Metrics) AddDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.dropped.Add(float64(n))
}

// RegisterDBStats exposes connection pool gauges for db.
func (m *Metrics) RegisterDBStats(db *sql.DB) {
	if m == nil || db == nil {
		return
	}
	gauge := func(name, help string, read func(sql.DBStats) int) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(read(db.Stats())) })
	}
	m.registry.MustRegister(
		gauge("open_connections", "Open connections to the historian.", func(s sql.DBStats) int { return s.OpenConnections }),
		gauge("in_use_connections", "Connections currently held by a query.", func(s sql.DBStats) int { return s.InUse }),
		gauge("idle_connections", "Idle pooled connections.", func(s sql.DBStats) int { return s.Idle }),
	)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
