package gateway

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trinity/internal/platform/metrics"
	"trinity/internal/platform/middleware"
)

// NewRouter wires the gateway's public surface: the relay stages, the admin
// console, the parsing proxies, and the token-guarded board endpoints.
func NewRouter(h *Handler, validator middleware.JWTValidator, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(instrument(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login-form", h.HandleLoginForm)
		r.Post("/auth", h.HandleAuth)
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
		r.Get("/user-info", h.HandleUserInfo)
		r.Get("/login-count", h.HandleLoginCount)

		r.Route("/mng", func(r chi.Router) {
			r.Post("/login", h.HandleMngLogin)
			r.Post("/logout", h.HandleMngLogout)
			r.Get("/shtmYyyy", h.HandleGetTerm)
			r.Post("/shtmYyyy", h.HandleSetTerm)
		})

		r.Route("/parsing", func(r chi.Router) {
			r.Post("/subjectInfo", h.HandleSubjectInfo)
			r.Post("/grade", h.HandleGrade)
		})

		r.Route("/vl", func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator, logger))
			r.Post("/post", h.HandleCreatePost)
			r.Get("/post", h.HandleListPosts)
			r.Post("/like", h.HandleLikePost)
		})
	})

	return r
}

// instrument records per-route request latency once the chi route pattern is
// known.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &middleware.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.RequestDurationMs.WithLabelValues(route, strconv.Itoa(rec.Status)).
				Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
