// Package metrics provides Prometheus instrumentation for the launchpad engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CalculationsTotal counts engine calls by operation and outcome
	// ("ok", "invalid", "division_by_zero", "error").
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_calculations_total",
		Help: "Total number of engine calculations",
	}, []string{"operation", "outcome"})

	// ValidationFindings counts tokenomics findings by kind and code.
	ValidationFindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_validation_findings_total",
		Help: "Tokenomics validation findings",
	}, []string{"kind", "code"})

	// DraftsSaved counts draft creates and updates.
	DraftsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_drafts_saved_total",
		Help: "Sale drafts created or updated",
	}, []string{"action"})

	// Contributions counts recorded contributions.
	Contributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "launchpad_contributions_total",
		Help: "Contributions recorded",
	})

	// ContributionLimitRejections counts contributions rejected by the limiter.
	ContributionLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_contribution_limit_rejections_total",
		Help: "Contributions rejected by the contribution limiter",
	}, []string{"reason"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "launchpad_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "launchpad_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, routePattern(r)).Observe(duration)
	})
}

// routePattern returns the matched chi route (e.g. /api/v1/drafts/{draftID})
// so draft IDs do not become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
