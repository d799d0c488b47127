// Package metrics holds the Prometheus collectors of the dashboard client:
// backend calls, dashboard loads, session transitions and the local view
// server.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "student_dashboard"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of backend API requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"endpoint"},
	)

	dashboardLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "loads_total",
			Help:      "Total number of dashboard loads by final status.",
		},
		[]string{"status"},
	)

	dashboardDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "load_duration_seconds",
			Help:      "Time from load start until the join resolved.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Session operations by kind and result.",
		},
		[]string{"operation", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of requests handled by the local view server.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(
		backendRequests,
		backendDuration,
		dashboardLoads,
		dashboardDuration,
		sessionEvents,
		httpRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordBackendRequest records one backend call. outcome is "ok" or the
// error class ("auth", "network", "malformed", "status").
func RecordBackendRequest(endpoint, outcome string, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	backendRequests.WithLabelValues(endpoint, outcome).Inc()
	backendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordDashboardLoad records a resolved dashboard load.
func RecordDashboardLoad(status string, duration time.Duration) {
	dashboardLoads.WithLabelValues(status).Inc()
	dashboardDuration.Observe(duration.Seconds())
}

// RecordSessionEvent records a login, register, restore or logout.
func RecordSessionEvent(operation string, success bool) {
	sessionEvents.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(strings.ToUpper(r.Method), r.URL.Path, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
