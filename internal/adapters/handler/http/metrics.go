package http

import (
	"strconv"
	"time"

	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Dashboard metrics
	dashboardRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_renders_total",
			Help: "Total number of dashboard renders by outcome",
		},
		[]string{"status"},
	)

	dashboardRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_render_duration_seconds",
			Help:    "Dashboard render duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	dashboardItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_items",
			Help: "Items produced by the most recent successful render",
		},
	)

	commandsTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_triggered_total",
			Help: "Run commands triggered by queue",
		},
		[]string{"queue"},
	)
)

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip metrics for WebSocket upgrade requests
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsHandler returns the Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordDashboardRender records one render attempt. The item gauge only moves
// on success so it keeps showing the last good render during an outage.
func RecordDashboardRender(status string, duration time.Duration, items int) {
	dashboardRendersTotal.WithLabelValues(status).Inc()
	dashboardRenderDuration.Observe(duration.Seconds())
	if status == "ok" {
		dashboardItems.Set(float64(items))
	}
}

// RecordCommandTriggered increments the trigger counter for a queue
func RecordCommandTriggered(queue string) {
	commandsTriggeredTotal.WithLabelValues(queue).Inc()
}
