package http

import (
	"net/http"
	"strings"
	"time"

	"jobauth/internal/authz"
	"jobauth/internal/domain"
	obsmw "jobauth/internal/observability/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	CORSOrigins string
	// Per-IP per-minute limits; zero disables the limiter.
	LoginLimit     int
	TwoFactorLimit int
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	if cfg.CORSOrigins != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
			AllowCredentials: true, // cookies carry the session
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(rateLimit(cfg.LoginLimit)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/password/reset", h.RequestPasswordReset)

		r.Group(func(r chi.Router) {
			r.Use(h.session.Middleware)
			r.Put("/password", h.UpdatePassword)
		})
	})

	r.Route("/v1/security", func(r chi.Router) {
		r.Use(h.session.Middleware)

		r.Post("/2fa/enroll", h.EnrollTwoFactor)
		// Unbounded code guessing defeats the second factor; throttle it.
		r.With(rateLimit(cfg.TwoFactorLimit)).Post("/2fa/confirm", h.ConfirmTwoFactor)

		r.Group(func(r chi.Router) {
			r.Use(authz.RequireRole(domain.RoleAdmin, domain.RoleManager))
			r.Get("/count", h.CountSecurity)
			r.Get("/{userID}", h.GetSecurity)
			r.Post("/{userID}/block", h.SetBlocked)
			r.Post("/{userID}/verify-email", h.VerifyEmail)
			r.Delete("/{userID}", h.SoftDelete)
		})
	})

	return r
}

func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(perMinute, time.Minute)
}
