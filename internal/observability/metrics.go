package observability

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

const namespace = "lexgraph"

// Metrics owns its registry so tests can build as many as they like.
// Every method is safe on a nil receiver, which is what callers get when
// METRICS_ENABLED is off.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	ingestResults    *prometheus.CounterVec
	ingestWarnings   prometheus.Counter
	ingestLatency    prometheus.Histogram
	versionBumps     *prometheus.CounterVec
	versionRetries   *prometheus.CounterVec
	propagationRuns  *prometheus.CounterVec
	templatesTouched prometheus.Counter
	templateFailures prometheus.Counter
	propagationTime  prometheus.Histogram
	selectorOutcomes *prometheus.CounterVec
	sideEffectErrors *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Init builds the process metrics once when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api", Name: "inflight_requests",
			Help: "In-flight API requests.",
		}),
		ingestResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ingest", Name: "results_total",
			Help: "Ingestion results by outcome and detected language.",
		}, []string{"outcome", "language"}),
		ingestWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ingest", Name: "warnings_total",
			Help: "Ingestion warnings emitted.",
		}),
		ingestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "ingest", Name: "duration_seconds",
			Help:    "Ingestion pipeline duration in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		versionBumps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "graph", Name: "version_bumps_total",
			Help: "Version bumps by entity type and outcome.",
		}, []string{"entity_type", "outcome"}),
		versionRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "graph", Name: "version_bump_retries_total",
			Help: "Optimistic version bump retries by entity type.",
		}, []string{"entity_type"}),
		propagationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "propagation", Name: "runs_total",
			Help: "Propagation runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		templatesTouched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "propagation", Name: "templates_touched_total",
			Help: "Templates version-bumped by propagation.",
		}),
		templateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "propagation", Name: "template_failures_total",
			Help: "Per-template propagation failures.",
		}),
		propagationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "propagation", Name: "duration_seconds",
			Help:    "Propagation fan-out duration in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		selectorOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "jurisdiction", Name: "selector_outcomes_total",
			Help: "Jurisdiction selector results by mode and state.",
		}, []string{"mode", "state"}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "graph", Name: "side_effect_errors_total",
			Help: "Post-commit side effect failures by sink.",
		}, []string{"sink"}),
	}
	reg.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.ingestResults, m.ingestWarnings, m.ingestLatency,
		m.versionBumps, m.versionRetries,
		m.propagationRuns, m.templatesTouched, m.templateFailures, m.propagationTime,
		m.selectorOutcomes, m.sideEffectErrors,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveIngest(success bool, language string, warnings int, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "succeeded"
	}
	if language == "" {
		language = "unknown"
	}
	m.ingestResults.WithLabelValues(outcome, language).Inc()
	m.ingestWarnings.Add(float64(warnings))
	m.ingestLatency.Observe(dur.Seconds())
}

func (m *Metrics) ObserveVersionBump(entityType, outcome string) {
	if m == nil {
		return
	}
	m.versionBumps.WithLabelValues(entityType, outcome).Inc()
}

func (m *Metrics) ObserveVersionRetry(entityType string) {
	if m == nil {
		return
	}
	m.versionRetries.WithLabelValues(entityType).Inc()
}

func (m *Metrics) ObservePropagation(kind string, touched, failed int, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case touched == 0 && failed == 0:
		outcome = "noop"
	case failed > 0:
		outcome = "partial"
	}
	m.propagationRuns.WithLabelValues(kind, outcome).Inc()
	m.templatesTouched.Add(float64(touched))
	m.templateFailures.Add(float64(failed))
	m.propagationTime.Observe(dur.Seconds())
}

func (m *Metrics) ObserveSelector(mode, state string) {
	if m == nil {
		return
	}
	m.selectorOutcomes.WithLabelValues(mode, state).Inc()
}

func (m *Metrics) ObserveSideEffectError(sink string) {
	if m == nil {
		return
	}
	m.sideEffectErrors.WithLabelValues(sink).Inc()
}
