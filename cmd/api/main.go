// Command api serves the Mindlog HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/cache"
	"github.com/mindlog/mindlog/internal/config"
	"github.com/mindlog/mindlog/internal/handler"
	"github.com/mindlog/mindlog/internal/icd"
	"github.com/mindlog/mindlog/internal/metrics"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository"
	"github.com/mindlog/mindlog/internal/server"
	"github.com/mindlog/mindlog/internal/service"
)

// minAuthFailureDuration pads failed credential checks.
const minAuthFailureDuration = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server_failed", "error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres %s: %w", redactURL(cfg.DatabaseURL), err)
	}
	logger.Info("postgres_connected", "url", redactURL(cfg.DatabaseURL))

	rdb, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		return fmt.Errorf("redis %s: %w", redactURL(cfg.RedisURL), err)
	}
	logger.Info("redis_connected", "url", redactURL(cfg.RedisURL))

	recorder := metrics.NewInMemory()

	provider := icd.New(icd.Config{
		TokenURL:         cfg.ICD.TokenURL,
		BaseURL:          cfg.ICD.BaseURL,
		ClientID:         cfg.ICD.ClientID,
		ClientSecret:     cfg.ICD.ClientSecret,
		Scope:            cfg.ICD.Scope,
		Release:          cfg.ICD.Release,
		Language:         cfg.ICD.Language,
		CategoryEntityID: cfg.ICD.CategoryEntityID,
		Timeout:          cfg.ICD.Timeout,
		SafetyMargin:     cfg.ICD.SafetyMargin,
	}, icd.WithMetrics(recorder), icd.WithLogger(logger))
	if !cfg.ICD.Enabled() {
		logger.Warn("icd_disabled", "reason", "ICD_CLIENT_ID or ICD_CLIENT_SECRET not set")
	}

	keys, err := credentialKeyer(cfg.CredentialCacheSecret, logger)
	if err != nil {
		repo.Close()
		_ = rdb.Close()
		return err
	}

	users := service.NewUserService(repo, auth.NewHasher(auth.DefaultParams), logger)
	links := service.NewRecordService[*model.ConditionLink](repo.ConditionLinks(), cfg.ConditionLinkHistoryLimit, recorder, logger)
	conditions := service.NewConditionService(provider, service.ConditionOptions{
		Cache:    rdb,
		Scope:    cfg.ICD.Release + "|" + cfg.ICD.Language,
		TTL:      cfg.ICD.SearchCacheTTL,
		Recorder: recorder,
		Logger:   logger,
	})

	handlers := server.Handlers{
		Root:     handler.New(logger),
		Health:   handler.NewHealthHandler(repo, rdb, logger),
		Metrics:  handler.NewMetricsHandler(recorder),
		Accounts: handler.NewAccountHandler(users, logger),
		Records: handler.NewRecordHandler(
			service.NewRecordService[*model.MoodEntry](repo.Moods(), cfg.MoodHistoryLimit, recorder, logger),
			service.NewRecordService[*model.ActivityEntry](repo.Activities(), cfg.ActivityHistoryLimit, recorder, logger),
			service.NewRecordService[*model.JournalEntry](repo.Journals(), cfg.JournalHistoryLimit, recorder, logger),
			logger,
		),
		Insights:   handler.NewInsightHandler(service.NewInsightService(repo.Moods()), logger),
		Conditions: handler.NewConditionHandler(conditions, links, logger),
	}

	router := server.NewRouter(handlers, server.RouterConfig{
		Logger:             logger,
		Metrics:            recorder,
		Users:              users,
		CredentialCache:    rdb,
		CredentialKeys:     keys,
		CredentialCacheTTL: cfg.CredentialCacheTTL,
		MinFailureDuration: minAuthFailureDuration,
		Limiter:            rdb,
		RateLimitEnabled:   cfg.RateLimitAuthEnabled,
		RateLimitRPS:       cfg.RateLimitAuthRPS,
		RateLimitBurst:     cfg.RateLimitAuthBurst,
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     2 * cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	})
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error { return rdb.Close() })
	srv.OnShutdown("icd", provider.Close)

	logger.Info("server_starting",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"icd_enabled", cfg.ICD.Enabled(),
	)
	return srv.Run()
}

// credentialKeyer keys the credential cache with secret, or with a random
// per-process secret when none is configured.
func credentialKeyer(secret string, logger *slog.Logger) (*auth.CredentialKeyer, error) {
	if secret != "" {
		return auth.NewCredentialKeyer([]byte(secret))
	}
	logger.Warn("credential_cache_secret_generated", "reason", "CREDENTIAL_CACHE_SECRET not set")
	return auth.RandomCredentialKeyer()
}

// newLogger builds the process logger. format "json" selects JSON output,
// anything else text.
func newLogger(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// parseLogLevel accepts slog level names in any case and falls back to info.
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

var passwordParam = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL, keeping the user.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if u.User != nil {
		name := u.User.Username()
		if name == "" {
			name = "redacted"
		}
		u.User = url.User(name)
	}
	return u.String()
}

// sanitizeError replaces each secret URL in err with its redacted form and
// masks password query parameters.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, redactURL(s))
		}
	}
	return passwordParam.ReplaceAllString(msg, "password=redacted")
}
