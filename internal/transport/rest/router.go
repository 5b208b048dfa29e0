package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/research-analytics/internal/analytics"
	"github.com/frahmantamala/research-analytics/internal/auth"
	userDatamodel "github.com/frahmantamala/research-analytics/internal/core/datamodel/user"
	"github.com/frahmantamala/research-analytics/internal/grant"
	"github.com/frahmantamala/research-analytics/internal/institution"
	"github.com/frahmantamala/research-analytics/internal/researcher"
	"github.com/frahmantamala/research-analytics/internal/timelog"
	"github.com/frahmantamala/research-analytics/internal/transport/middleware"
	"github.com/frahmantamala/research-analytics/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Handlers groups the domain handlers mounted under /api/v1.
type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Institution *institution.Handler
	Researcher  *researcher.Handler
	Grant       *grant.Handler
	TimeLog     *timelog.Handler
	Analytics   *analytics.Handler
}

// Options carries the optional cross-cutting pieces. Nil fields are skipped.
type Options struct {
	Name           string
	Version        string
	AllowedOrigins []string
	Metrics        *middleware.HTTPMetrics
	MetricsPath    string
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	SpecHandler    http.Handler
	DocsHandler    http.Handler
}

func newCORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders:   []string{middleware.TraceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

func RegisterAllRoutes(router chi.Router, health *HealthHandler, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(newCORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware)
	}
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"name":      opts.Name,
			"version":   opts.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.Get("/health", health.healthCheckHandler)

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, opts.MetricsHandler)
	}
	if opts.SpecHandler != nil {
		router.Handle("/openapi.json", opts.SpecHandler)
	}
	if opts.DocsHandler != nil {
		router.Handle("/docs/*", opts.DocsHandler)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.healthCheckHandler)
		r.Get("/ping", health.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)
				pr.Post("/logout", h.Auth.Logout)
				if h.User != nil {
					pr.Get("/profile", h.User.GetProfile)
				}
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetProfile)
			}
			if h.Institution != nil {
				admin := h.Auth.RequireRoles(userDatamodel.RoleSuperAdmin, userDatamodel.RoleInstitutionAdmin)
				pr.Route("/institutions", func(ir chi.Router) { h.Institution.Routes(ir, admin) })
			}
			if h.Researcher != nil {
				pr.Route("/researchers", h.Researcher.Routes)
			}
			if h.Grant != nil {
				pr.Route("/grants", h.Grant.Routes)
			}
			if h.TimeLog != nil {
				pr.Route("/time-logs", h.TimeLog.Routes)
			}
			if h.Analytics != nil {
				pr.Route("/analytics", h.Analytics.Routes)
			}
		})
	})
}
