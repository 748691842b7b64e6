package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finagent/expense-pipeline/internal/core/domain"
)

type HTTPServerMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	dispositionsTotal    *prometheus.CounterVec
	riskGateSkippedTotal prometheus.Counter
	dispatchFailureTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fep",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fep",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fep",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	dispositionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fep",
			Subsystem: "pipeline",
			Name:      "dispositions_total",
			Help:      "Total routed submissions by disposition status and reason.",
		},
		[]string{"service", "status", "reason"},
	)
	riskGateSkippedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fep",
			Subsystem: "pipeline",
			Name:      "risk_gate_skipped_total",
			Help:      "Total submissions below the fraud-check amount cutoff.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	dispatchFailureTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fep",
			Subsystem: "pipeline",
			Name:      "side_effect_dispatch_failures_total",
			Help:      "Total failed fire-and-forget side effect dispatches by kind.",
		},
		[]string{"service", "kind"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		dispositionsTotal,
		riskGateSkippedTotal,
		dispatchFailureTotal,
	)

	return &HTTPServerMetrics{
		service:              service,
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		dispositionsTotal:    dispositionsTotal,
		riskGateSkippedTotal: riskGateSkippedTotal,
		dispatchFailureTotal: dispatchFailureTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/expenses/"):
		return "/v1/expenses/{submission_id}"
	case strings.HasPrefix(path, "/v1/fraud/alerts/"):
		return "/v1/fraud/alerts/{alert_id}/resolve"
	default:
		return path
	}
}

// DispositionDecided implements ports.PipelineTelemetry.
func (m *HTTPServerMetrics) DispositionDecided(status domain.DispositionStatus, reason domain.DecisionReason) {
	m.dispositionsTotal.WithLabelValues(m.service, string(status), string(reason)).Inc()
}

func (m *HTTPServerMetrics) RiskGateSkipped() {
	m.riskGateSkippedTotal.Inc()
}

func (m *HTTPServerMetrics) SideEffectDispatchFailure(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.dispatchFailureTotal.WithLabelValues(m.service, kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
