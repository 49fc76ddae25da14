// Package jwt issues and verifies HS256 session tokens.
//
// Tokens carry sub, email, role, iss, aud, iat and exp. They are accepted
// from an "Authorization: Bearer" header or from the session cookie. A
// broken bearer token is rejected, while a broken cookie is ignored so that
// public pages keep rendering for visitors with a stale session.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/debug"
)

// MinSecretBytes is the shortest accepted signing secret.
const MinSecretBytes = 32

// DefaultCookieName names the session cookie.
const DefaultCookieName = "nordweb_session"

// Config holds the session token configuration.
type Config struct {
	// Secret is the HMAC signing key (required, at least MinSecretBytes).
	Secret []byte

	// Issuer is written to and required in the iss claim.
	Issuer string

	// Audience is written to and required in the aud claim.
	Audience string

	// TTL is the token lifetime. Default: 24 hours.
	TTL time.Duration

	// CookieName is the session cookie. Default: DefaultCookieName.
	CookieName string

	// SecureCookie sets the Secure attribute on the cookie.
	SecureCookie bool
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "nordweb"
	}
	if c.Audience == "" {
		c.Audience = "nordweb-portal"
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
}

// Claims is the token payload.
type Claims struct {
	Email string   `json:"email"`
	Role  api.Role `json:"role"`
	jwtlib.RegisteredClaims
}

// Authenticator issues session tokens and validates them on requests.
type Authenticator struct {
	config Config
	now    func() time.Time
}

// New creates a session token authenticator.
func New(cfg Config) (*Authenticator, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretBytes)
	}
	cfg.applyDefaults()
	return &Authenticator{config: cfg, now: time.Now}, nil
}

// CookieName returns the configured session cookie name.
func (a *Authenticator) CookieName() string {
	return a.config.CookieName
}

// Issue signs a token for the profile and returns it with its expiry.
func (a *Authenticator) Issue(p *api.Profile) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.config.TTL)

	claims := Claims{
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    a.config.Issuer,
			Audience:  jwtlib.ClaimStrings{a.config.Audience},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expires),
		},
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(a.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return token, expires, nil
}

// Verify parses and validates a token string.
func (a *Authenticator) Verify(tokenStr string) (*auth.Identity, error) {
	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(tokenStr, claims,
		func(*jwtlib.Token) (any, error) { return a.config.Secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(a.config.Issuer),
		jwtlib.WithAudience(a.config.Audience),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("token missing sub claim")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("token carries unknown role %q", claims.Role)
	}

	return &auth.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
		Method:  auth.MethodSession,
	}, nil
}

// Authenticate checks the bearer header first, then the session cookie.
// A bearer value that is not shaped like a JWT is left to other
// authenticators.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token := strings.TrimPrefix(header, "Bearer ")
		if !looksLikeJWT(token) {
			return auth.AuthResult{Decision: auth.Abstain}
		}
		id, err := a.Verify(token)
		if err != nil {
			debug.Log("auth", "bearer token rejected", "error", err)
			return auth.AuthResult{Decision: auth.No, Err: err}
		}
		return auth.AuthResult{Decision: auth.Yes, Identity: id}
	}

	cookie, err := r.Cookie(a.config.CookieName)
	if err != nil || cookie.Value == "" {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	id, err := a.Verify(cookie.Value)
	if err != nil {
		debug.Log("auth", "session cookie ignored", "error", err)
		return auth.AuthResult{Decision: auth.Abstain}
	}
	return auth.AuthResult{Decision: auth.Yes, Identity: id}
}

// SetCookie stores token in the session cookie.
func (a *Authenticator) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.config.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(a.now()).Seconds()),
		HttpOnly: true,
		Secure:   a.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie in the browser.
func (a *Authenticator) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func looksLikeJWT(s string) bool {
	return strings.Count(s, ".") == 2
}
