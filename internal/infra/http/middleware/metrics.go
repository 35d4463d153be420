package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	stageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_stage_transitions_total",
			Help: "Total number of lead stage transitions by outcome",
		},
		[]string{"funnel", "target", "outcome"},
	)

	sideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transition_side_effect_failures_total",
			Help: "Total number of derived writes that failed after a committed transition",
		},
		[]string{"step"},
	)

	notificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	npsInvitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nps_invitations_total",
			Help: "Total number of NPS invitations by result",
		},
		[]string{"status"},
	)
)

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := newStatusRecorder(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.Status())
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern evita um rótulo por id na URL.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// PromRecorder publica os eventos de domínio nos contadores do Prometheus.
type PromRecorder struct{}

func (PromRecorder) RecordTransition(funnel, target, outcome string) {
	stageTransitions.WithLabelValues(funnel, target, outcome).Inc()
}

func (PromRecorder) RecordSideEffectFailure(step string) {
	sideEffectFailures.WithLabelValues(step).Inc()
}

func (PromRecorder) RecordNotification(kind string) {
	notificationsCreated.WithLabelValues(kind).Inc()
}

func (PromRecorder) RecordNPSInvitation(status string) {
	npsInvitations.WithLabelValues(status).Inc()
}
