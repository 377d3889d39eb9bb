package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindlog/mindlog/internal/auth"
	"github.com/mindlog/mindlog/internal/metrics"
	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/service"
)

// Authenticator verifies a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// CredentialCache remembers verified credential pairs by their keyed hash.
type CredentialCache interface {
	GetPrincipal(ctx context.Context, credentialKey string) (*model.Principal, error)
	SetPrincipal(ctx context.Context, credentialKey string, p *model.Principal, ttl time.Duration) error
}

// CredentialsConfig holds configuration for the Credentials middleware.
type CredentialsConfig struct {
	Logger   *slog.Logger
	Users    Authenticator
	Cache    CredentialCache // optional
	CacheTTL time.Duration
	// Keys derives cache keys. Caching is off without it.
	Keys     *auth.CredentialKeyer
	Metrics  metrics.Recorder
	// UsernameParam names a path parameter that supplies the username when
	// the form does not.
	UsernameParam string
	// MinFailureDuration pads failed attempts so unknown users and wrong
	// passwords take the same time.
	MinFailureDuration time.Duration
}

// Credentials authenticates the username and password form fields and
// injects the principal into the request context. Every failure gets the
// same 401 body.
func Credentials(cfg CredentialsConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Keys == nil {
		cfg.Cache = nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			fail := func(reason string) {
				cfg.Metrics.IncAuthFailure(reason)
				cfg.Logger.Warn("authentication_failed",
					slog.String("reason", reason),
					slog.String("ip", getClientIP(r)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				if elapsed := time.Since(start); elapsed < cfg.MinFailureDuration {
					time.Sleep(cfg.MinFailureDuration - elapsed)
				}
				writeAuthError(w)
			}

			if err := ParseRequestForm(r); err != nil {
				WriteFormError(w, err)
				return
			}

			username := r.Form.Get("username")
			if username == "" && cfg.UsernameParam != "" {
				username = chi.URLParam(r, cfg.UsernameParam)
			}
			password := r.Form.Get("password")
			if username == "" || password == "" {
				fail("missing_credentials")
				return
			}

			var cacheKey string
			if cfg.Cache != nil {
				cacheKey = cfg.Keys.Key(username, password)
				if p, _ := cfg.Cache.GetPrincipal(r.Context(), cacheKey); p != nil && p.Username == username {
					ctx := auth.ContextWithPrincipal(r.Context(), p)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			user, err := cfg.Users.Authenticate(r.Context(), username, password)
			switch {
			case errors.Is(err, service.ErrInvalidUsername):
				fail("unknown_user")
				return
			case errors.Is(err, service.ErrInvalidPassword):
				fail("invalid_password")
				return
			case err != nil:
				cfg.Logger.Error("authentication_error",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			p := user.Principal()
			if cfg.Cache != nil {
				if err := cfg.Cache.SetPrincipal(r.Context(), cacheKey, p, cfg.CacheTTL); err != nil {
					cfg.Logger.Warn("credential_cache_write_failed", slog.String("error", err.Error()))
				}
			}

			ctx := auth.ContextWithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSelf rejects requests whose path parameter param names someone
// other than the authenticated user. Must be applied after Credentials.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if p == nil {
				writeAuthError(w)
				return
			}

			if chi.URLParam(r, param) != p.Username {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only access your own data")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password")
}
