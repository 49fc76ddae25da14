package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/debug"
	"github.com/nordweb/portal/pkg/observability"
	"github.com/nordweb/portal/pkg/storage"
	"github.com/nordweb/portal/pkg/transport"
)

// RoleLookup returns the current role stored on a profile. It returns
// storage.ErrNotFound when the profile no longer exists.
type RoleLookup interface {
	LookupRole(ctx context.Context, profileID string) (api.Role, error)
}

// Middleware creates HTTP middleware from an AuthChain, an optional
// RoleLookup and an optional RateLimiter.
//
// A No vote is rejected with 401. An abstaining chain lets the request
// through without an identity. Session identities get their role re-read
// through roles; a deleted profile drops the identity. Non-admin callers
// have their storage queries scoped to their own projects.
func Middleware(chain *AuthChain, roles RoleLookup, limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := chain.Authenticate(r.Context(), r)

			switch result.Decision {
			case No:
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.AuthAttemptsTotal.WithLabelValues("unknown", "rejected").Inc()
				transport.WriteAPIError(w, api.NewUnauthorizedError("invalid credentials"))
				return
			case Abstain:
				next.ServeHTTP(w, r)
				return
			}

			id := result.Identity
			if id == nil || id.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
				return
			}

			if roles != nil && id.Method == MethodSession {
				role, err := roles.LookupRole(r.Context(), id.Subject)
				switch {
				case errors.Is(err, storage.ErrNotFound):
					debug.Log("auth", "profile gone, dropping identity", "subject", id.Subject)
					observability.AuthAttemptsTotal.WithLabelValues(id.Method, "stale").Inc()
					next.ServeHTTP(w, r)
					return
				case err != nil:
					slog.Error("role lookup failed", "subject", id.Subject, "error", err)
					transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
					return
				}
				if role != id.Role {
					debug.Log("auth", "role changed since token was issued",
						"subject", id.Subject, "token_role", id.Role, "role", role)
				}
				refreshed := *id
				refreshed.Role = role
				id = &refreshed
			}

			observability.AuthAttemptsTotal.WithLabelValues(id.Method, "accepted").Inc()
			debug.Log("auth", "authentication succeeded",
				"subject", id.Subject,
				"role", id.Role,
				"method", id.Method,
				"path", r.URL.Path,
			)

			if limiter != nil {
				if err := limiter.Allow(r.Context(), "subject:"+id.Subject); err != nil {
					slog.Warn("rate limit exceeded", "subject", id.Subject)
					transport.WriteAPIError(w, api.NewTooManyRequestsError("rate limit exceeded"))
					return
				}
			}

			ctx := SetIdentity(r.Context(), id)
			if !id.IsAdmin() {
				ctx = storage.SetClientScope(ctx, id.Subject)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Mode selects how RequireRole reports a missing or insufficient identity.
type Mode struct {
	html   bool
	denied http.Handler
}

// API answers with JSON 401 and 403 errors.
var API = Mode{}

// HTML redirects anonymous callers to the login page and serves denied to
// callers whose role is too low. denied is expected to write a 403 status.
func HTML(denied http.Handler) Mode {
	return Mode{html: true, denied: denied}
}

// LoginPath is where HTML mode sends anonymous callers.
const LoginPath = "/login"

// RequireRole wraps a handler so that only callers with at least min reach
// it.
func RequireRole(min api.Role, mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				if mode.html {
					target := LoginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
					http.Redirect(w, r, target, http.StatusSeeOther)
					return
				}
				transport.WriteAPIError(w, api.NewUnauthorizedError("authentication required"))
				return
			}

			if !id.Role.AtLeast(min) {
				debug.Log("auth", "role too low", "subject", id.Subject, "role", id.Role, "required", min)
				if mode.html {
					if mode.denied == nil {
						http.Error(w, "Forbidden", http.StatusForbidden)
						return
					}
					mode.denied.ServeHTTP(w, r)
					return
				}
				transport.WriteAPIError(w, api.NewForbiddenError("insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
