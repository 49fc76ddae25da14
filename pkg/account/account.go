// Package account manages portal accounts: sign-up and sign-in with bcrypt
// password hashes, the session view of the current caller, self-service
// profile edits and owner-only role management.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/debug"
	"github.com/nordweb/portal/pkg/observability"
	"github.com/nordweb/portal/pkg/storage"
)

// errBadCredentials is returned for every failed sign-in so callers cannot
// tell unknown emails from wrong passwords.
var errBadCredentials = api.NewUnauthorizedError("invalid email or password")

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(p *api.Profile) (string, time.Time, error)
}

// Config controls account behavior.
type Config struct {
	// BootstrapOwner makes the first account ever created an owner.
	BootstrapOwner bool

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service implements the account operations.
type Service struct {
	store   storage.ProfileStore
	tokens  TokenIssuer
	limiter auth.RateLimiter
	cfg     Config
	now     func() time.Time

	// signUpMu serializes sign-ups so that only one account can claim the
	// bootstrap owner role.
	signUpMu sync.Mutex

	// dummyHash is compared against when the email is unknown.
	dummyHash []byte
}

// Option configures a Service.
type Option func(*Service)

// WithSignInLimiter rate-limits sign-in attempts per email and remote address.
func WithSignInLimiter(l auth.RateLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// New creates an account service. It fails when the bcrypt cost is out of
// range.
func New(store storage.ProfileStore, tokens TokenIssuer, cfg Config, opts ...Option) (*Service, error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d is outside %d..%d", cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	s := &Service{
		store:  store,
		tokens: tokens,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("nordweb-timing-equalizer"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("preparing sign-in hash: %w", err)
	}
	s.dummyHash = hash
	return s, nil
}

// SignUpInput is the sign-up request body.
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Company  string `json:"company,omitempty"`
}

// SignUp creates a profile with role user. The first account becomes the
// owner when bootstrap is enabled.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*api.Profile, error) {
	s.signUpMu.Lock()
	defer s.signUpMu.Unlock()

	role := api.RoleUser
	if s.cfg.BootstrapOwner {
		existing, err := s.store.ListProfiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing profiles: %w", err)
		}
		if len(existing) == 0 {
			role = api.RoleOwner
		}
	}

	p, err := s.create(ctx, in, role)
	if err != nil {
		return nil, err
	}
	slog.Info("account created", "profile_id", p.ID, "role", p.Role)
	return p, nil
}

// CreateUser creates an account with an explicit role. It backs the
// command-line bootstrap and skips the owner check.
func (s *Service) CreateUser(ctx context.Context, in SignUpInput, role api.Role) (*api.Profile, error) {
	if !role.Valid() {
		return nil, api.NewInvalidRequestError("role", fmt.Sprintf("unknown role %q", role))
	}
	s.signUpMu.Lock()
	defer s.signUpMu.Unlock()
	return s.create(ctx, in, role)
}

func (s *Service) create(ctx context.Context, in SignUpInput, role api.Role) (*api.Profile, error) {
	if apiErr := api.ValidateSignUp(in.Email, in.Password, in.FullName); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := api.ApplyProfileInput(&api.Profile{FullName: in.FullName}, api.ProfileInput{Company: &in.Company}); apiErr != nil {
		return nil, apiErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	cred := &api.Credentials{
		Profile: api.Profile{
			ID:        api.NewID(api.PrefixProfile),
			Email:     strings.TrimSpace(in.Email),
			FullName:  strings.TrimSpace(in.FullName),
			Company:   strings.TrimSpace(in.Company),
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}

	if err := s.store.CreateProfile(ctx, cred); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewConflictError("email", "an account with this email already exists")
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	p := cred.Profile
	return &p, nil
}

// SignInInput is the sign-in request body. RemoteAddr is filled in by the
// transport.
type SignInInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RemoteAddr string `json:"-"`
}

// SignInResult carries the session token and the signed-in profile.
type SignInResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Profile   *api.Profile `json:"profile"`
}

// SignIn checks the password and issues a session token. Wrong emails and
// wrong passwords produce the same error.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	email := api.NormalizeEmail(in.Email)
	key := "signin:" + email + "|" + in.RemoteAddr

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, key); err != nil {
			observability.AuthAttemptsTotal.WithLabelValues("password", "throttled").Inc()
			return nil, api.NewTooManyRequestsError("too many sign-in attempts, try again later")
		}
	}

	cred, err := s.store.GetCredentialsByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		debug.Log("auth", "sign-in for unknown email")
		observability.AuthAttemptsTotal.WithLabelValues("password", "rejected").Inc()
		return nil, errBadCredentials
	case err != nil:
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(in.Password)); err != nil {
		slog.Warn("wrong password", "profile_id", cred.Profile.ID, "remote_addr", in.RemoteAddr)
		observability.AuthAttemptsTotal.WithLabelValues("password", "rejected").Inc()
		return nil, errBadCredentials
	}

	if r, ok := s.limiter.(interface{ Reset(string) }); ok {
		r.Reset(key)
	}

	p := cred.Profile
	token, expires, err := s.tokens.Issue(&p)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	observability.AuthAttemptsTotal.WithLabelValues("password", "accepted").Inc()
	debug.Log("auth", "signed in", "profile_id", p.ID)
	return &SignInResult{Token: token, ExpiresAt: expires, Profile: &p}, nil
}

// Session returns the profile of the caller with the role predicates.
func (s *Service) Session(ctx context.Context, id *auth.Identity) (*api.Session, error) {
	p, err := s.self(ctx, id)
	if err != nil {
		return nil, err
	}
	return api.NewSession(p), nil
}

// UpdateProfile changes the caller's own name, company and phone.
func (s *Service) UpdateProfile(ctx context.Context, id *auth.Identity, in api.ProfileInput) (*api.Profile, error) {
	p, err := s.self(ctx, id)
	if err != nil {
		return nil, err
	}
	if apiErr := api.ApplyProfileInput(p, in); apiErr != nil {
		return nil, apiErr
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, mapStoreError(err, "profile")
	}
	return p, nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, id *auth.Identity, oldPassword, newPassword string) error {
	if id == nil || id.Method != auth.MethodSession {
		return api.NewUnauthorizedError("sign in to change your password")
	}
	cred, err := s.store.GetCredentials(ctx, id.Subject)
	if err != nil {
		return mapStoreError(err, "profile")
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(oldPassword)); err != nil {
		return api.NewInvalidRequestError("old_password", "current password is incorrect")
	}
	if apiErr := api.ValidatePassword(newPassword); apiErr != nil {
		return apiErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.store.SetPasswordHash(ctx, id.Subject, hash); err != nil {
		return mapStoreError(err, "profile")
	}
	slog.Info("password changed", "profile_id", id.Subject)
	return nil
}

// ListProfiles returns every profile. Admin and owner only.
func (s *Service) ListProfiles(ctx context.Context, id *auth.Identity) ([]*api.Profile, error) {
	if err := requireRole(id, api.RoleAdmin); err != nil {
		return nil, err
	}
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

// SetRole changes the role of target. Owner only. The last owner cannot be
// demoted.
func (s *Service) SetRole(ctx context.Context, actor *auth.Identity, targetID string, role api.Role) (*api.Profile, error) {
	if err := requireRole(actor, api.RoleOwner); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, targetID)
	if err != nil {
		return nil, mapStoreError(err, "profile")
	}
	p, err = s.setRole(ctx, p, role)
	if err != nil {
		return nil, err
	}
	slog.Info("role changed", "profile_id", p.ID, "role", p.Role, "by", actor.Subject)
	return p, nil
}

// SetRoleByEmail changes a role without an acting identity. It backs the
// command-line tooling.
func (s *Service) SetRoleByEmail(ctx context.Context, email string, role api.Role) (*api.Profile, error) {
	cred, err := s.store.GetCredentialsByEmail(ctx, api.NormalizeEmail(email))
	if err != nil {
		return nil, mapStoreError(err, "profile")
	}
	p := cred.Profile
	return s.setRole(ctx, &p, role)
}

func (s *Service) setRole(ctx context.Context, p *api.Profile, role api.Role) (*api.Profile, error) {
	if !role.Valid() {
		return nil, api.NewInvalidRequestError("role", fmt.Sprintf("unknown role %q", role))
	}
	if p.Role == role {
		return p, nil
	}

	s.signUpMu.Lock()
	defer s.signUpMu.Unlock()

	if p.Role.IsOwner() {
		owners, err := s.countOwners(ctx)
		if err != nil {
			return nil, err
		}
		if owners <= 1 {
			return nil, api.NewConflictError("role", "cannot demote the last owner")
		}
	}

	p.Role = role
	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, mapStoreError(err, "profile")
	}
	return p, nil
}

// LookupRole returns the stored role of a profile. Missing profiles return
// storage.ErrNotFound unchanged.
func (s *Service) LookupRole(ctx context.Context, profileID string) (api.Role, error) {
	p, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func (s *Service) countOwners(ctx context.Context) (int, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing profiles: %w", err)
	}
	n := 0
	for _, p := range profiles {
		if p.Role.IsOwner() {
			n++
		}
	}
	return n, nil
}

// self loads the caller's own profile.
func (s *Service) self(ctx context.Context, id *auth.Identity) (*api.Profile, error) {
	if id == nil {
		return nil, api.NewUnauthorizedError("authentication required")
	}
	if id.Method != auth.MethodSession && id.Method != auth.MethodDev {
		return nil, api.NewForbiddenError("this credential has no profile")
	}
	p, err := s.store.GetProfile(ctx, id.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewUnauthorizedError("authentication required")
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return p, nil
}

func requireRole(id *auth.Identity, min api.Role) error {
	if id == nil {
		return api.NewUnauthorizedError("authentication required")
	}
	if !id.Role.AtLeast(min) {
		return api.NewForbiddenError("insufficient role")
	}
	return nil
}

func mapStoreError(err error, what string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return api.NewNotFoundError(what + " not found")
	case errors.Is(err, storage.ErrConflict):
		return api.NewConflictError("", what+" already exists")
	}
	return fmt.Errorf("%s: %w", what, err)
}
