package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/ratelimit"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/internal/service"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/health"
	"github.com/JarabaImpactPlatformSaSS/JarabaImpactPlatformSaaS-sub005/pkg/middleware"
)

// RouterConfig carries the services and cross-cutting pieces the router
// wires together.
type RouterConfig struct {
	Moderation *service.ModerationService
	Votes      *service.VoteService
	Query      *service.QueryService
	Stats      *service.StatsService
	Analytics  *service.AnalyticsService
	Export     *service.ExportService

	Health      *health.Handler
	RateLimiter *ratelimit.Limiter
	JWTSecret   string
	Logger      *slog.Logger
}

// NewRouter creates a chi router with all review engine routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("review"))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	reviewHandler := NewReviewHandler(cfg.Moderation, cfg.Votes, cfg.Query, cfg.Stats, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Moderation, cfg.Analytics, cfg.Export, cfg.Logger)
	publicHandler := NewPublicHandler(cfg.Query, cfg.Stats, cfg.Logger)

	// Authenticated review API
	r.Route("/api/v1/reviews/{kind}", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.Logger))

		r.Post("/", reviewHandler.Submit)
		r.Get("/", reviewHandler.List)

		r.Get("/stats/{targetId}", reviewHandler.Stats)

		r.Get("/{id}", reviewHandler.Get)
		r.Patch("/{id}", reviewHandler.Edit)
		r.Delete("/{id}", reviewHandler.Delete)
		r.Post("/{id}/vote", reviewHandler.Vote)
		r.Post("/{id}/response", reviewHandler.Respond)
		r.Put("/{id}/status", reviewHandler.UpdateStatus)
		r.Post("/{id}/report", reviewHandler.Report)
	})

	// Admin API
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.JWTAuth(cfg.JWTSecret, cfg.Logger))

		r.Get("/analytics", adminHandler.Dashboard)
		r.Get("/analytics/export", adminHandler.Export)
		r.Get("/reviews/{kind}/pending", adminHandler.PendingQueue)
	})

	// Public read-only API, rate limited per caller
	r.Route("/public/v1/reviews/{kind}", func(r chi.Router) {
		r.Use(cfg.RateLimiter.Middleware)

		r.Get("/", publicHandler.List)
		r.Get("/stats/{targetId}", publicHandler.Stats)
		r.Get("/{id}", publicHandler.Get)
	})

	return r
}
