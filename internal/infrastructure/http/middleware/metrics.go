package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskmanager_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	apiKeyRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanager_api_key_rejections_total",
			Help: "Requests rejected by the API key gate",
		},
		[]string{"reason"},
	)
	taskMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmanager_task_mutations_total",
			Help: "Task and user mutations by operation and outcome",
		},
		[]string{"operation", "success"},
	)
)

// PrometheusMiddleware records request duration labelled by chi route pattern
// so ids in paths do not explode cardinality.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(ww.Status())
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(duration)
	})
}

// RecordAPIKeyRejection counts a request turned away by RequireAPIKey.
func RecordAPIKeyRejection(missing bool) {
	reason := "mismatch"
	if missing {
		reason = "missing"
	}
	apiKeyRejections.WithLabelValues(reason).Inc()
}

// RecordMutation counts a create/update/delete attempt.
func RecordMutation(operation string, success bool) {
	taskMutations.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
}
