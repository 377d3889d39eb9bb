package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/handler"
	"github.com/mindlog/mindlog/internal/metrics"
	"github.com/mindlog/mindlog/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Root       *handler.Handler
	Health     *handler.HealthHandler
	Metrics    *handler.MetricsHandler
	Accounts   *handler.AccountHandler
	Records    *handler.RecordHandler
	Insights   *handler.InsightHandler
	Conditions *handler.ConditionHandler
}

// RouterConfig holds everything the router needs besides the handlers.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder

	// Credential checks
	Users              middleware.Authenticator
	CredentialCache    middleware.CredentialCache // optional
	CredentialKeys     *auth.CredentialKeyer
	CredentialCacheTTL time.Duration
	MinFailureDuration time.Duration

	// Per-IP rate limiting of credential-bearing routes
	Limiter          middleware.IPLimiter // optional
	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int

	IsDevelopment      bool
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(h Handlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.IsDevelopment))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	// Health and info endpoints (no credentials required)
	r.Get("/", h.Root.Info)
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Get("/metrics", h.Metrics.Metrics)

	rateLimit := middleware.RateLimitIP(middleware.RateLimitConfig{
		Logger:  cfg.Logger,
		Limiter: cfg.Limiter,
		Metrics: cfg.Metrics,
		Enabled: cfg.RateLimitEnabled,
		Bucket:  "auth",
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	})

	credCfg := middleware.CredentialsConfig{
		Logger:             cfg.Logger,
		Users:              cfg.Users,
		Cache:              cfg.CredentialCache,
		Keys:               cfg.CredentialKeys,
		CacheTTL:           cfg.CredentialCacheTTL,
		Metrics:            cfg.Metrics,
		MinFailureDuration: cfg.MinFailureDuration,
	}
	credentials := middleware.Credentials(credCfg)

	// Path-scoped routes take the username from the URL when the form
	// omits it, and only serve the caller's own data.
	pathCredCfg := credCfg
	pathCredCfg.UsernameParam = "username"
	pathCredentials := middleware.Credentials(pathCredCfg)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit)

		r.Post("/register", h.Accounts.Register)

		r.Group(func(r chi.Router) {
			r.Use(credentials)

			r.Post("/login", h.Accounts.Login)

			r.Post("/mood", h.Records.LogMood)
			r.Post("/activity", h.Records.LogActivity)
			r.Post("/journal", h.Records.LogJournal)
			r.Post("/mood_history", h.Records.MoodHistory)
			r.Post("/activity_history", h.Records.ActivityHistory)
			r.Post("/journal_history", h.Records.JournalHistory)

			r.Route("/icd", func(r chi.Router) {
				r.Get("/categories", h.Conditions.Categories)
				r.Post("/search", h.Conditions.Search)
				r.Post("/links", h.Conditions.Link)
				r.Post("/links_history", h.Conditions.LinkHistory)
			})
		})

		self := middleware.RequireSelf("username")
		r.With(pathCredentials, self).Get("/insights/{username}", h.Insights.Insights)
		r.With(pathCredentials, self).Get("/mood_chart/{username}", h.Insights.MoodChart)
	})

	// 404 and 405 handlers
	r.NotFound(h.Root.NotFound)
	r.MethodNotAllowed(h.Root.MethodNotAllowed)

	return r
}
