package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"media-production-workflow/internal/application"
	"media-production-workflow/internal/infra/redis"
)

// Server is the operational HTTP surface: health, integrity inspection,
// the orphan-repair endpoint, and Prometheus metrics. It is an internal
// tool, not the partner-facing API.
type Server struct {
	facade      *application.StorageFacade
	auth        *AuthManager
	adminSecret string
	limiter     *redis.RateLimiter
	rateLimit   int
	log         *zerolog.Logger
}

func NewServer(
	facade *application.StorageFacade,
	auth *AuthManager,
	adminSecret string,
	limiter *redis.RateLimiter,
	rateLimit int,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		facade:      facade,
		auth:        auth,
		adminSecret: adminSecret,
		limiter:     limiter,
		rateLimit:   rateLimit,
		log:         logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))
	r.Use(RateLimit(s.limiter, s.rateLimit, s.log))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/auth/session", s.handleLogin)

	r.Route("/api/v1/integrity", func(r chi.Router) {
		r.Use(s.guard)
		r.Get("/health", s.handleHealthCheck)
		r.Get("/jobs/{id}", s.handleJobIntegrity)
		r.Get("/orders/{id}", s.handleOrderIntegrity)
		r.Post("/orders/{id}/repair", s.handleOrderRepair)
	})
	r.With(s.guard).Get("/api/v1/audit", s.handleAudit)

	return r
}

// guard requires a valid session token on everything below /api/v1.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleLogin exchanges the shared operator secret for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.adminSecret == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	presented := r.Header.Get("X-Ops-Secret")
	if subtle.ConstantTimeCompare([]byte(presented), []byte(s.adminSecret)) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts;
// the caller owns ListenAndServe and Shutdown.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
