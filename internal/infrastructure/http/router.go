package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/middleware"
)

// APIPrefix is the path prefix guarded by the API key.
const APIPrefix = "/api/"

type RouterConfig struct {
	TasksHandler  *handlers.TasksHandler
	UsersHandler  *handlers.UsersHandler
	HealthHandler *handlers.HealthHandler
	APIKey        string
	Log           zerolog.Logger
	Secure        func(http.Handler) http.Handler
	CORS          func(http.Handler) http.Handler
	IPRateLimit   func(http.Handler) http.Handler
	Metrics       bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	// Nothing under /api/ runs, not even rate limiting or body checks,
	// until the key matches.
	r.Use(middleware.RequireAPIKey(APIPrefix, cfg.APIKey))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}
	r.Use(chimid.AllowContentType("application/json"))
	r.Use(chimid.SetHeader("Content-Type", "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusNotFound, "", "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, http.StatusMethodNotAllowed, "", "method not allowed")
	})

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/", cfg.TasksHandler.Create)
		r.Get("/", cfg.TasksHandler.List)
		r.Get("/export", cfg.TasksHandler.Export)
		r.Get("/{id}", cfg.TasksHandler.Get)
		r.Put("/{id}", cfg.TasksHandler.Update)
		r.Patch("/{id}/status", cfg.TasksHandler.UpdateStatus)
		r.Delete("/{id}", cfg.TasksHandler.Delete)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", cfg.UsersHandler.Create)
		r.Get("/", cfg.UsersHandler.List)
		r.Get("/{id}", cfg.UsersHandler.Get)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", chimid.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
