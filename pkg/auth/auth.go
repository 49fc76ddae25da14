package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/nordweb/portal/pkg/api"
)

// AuthDecision represents the three possible outcomes of authentication.
type AuthDecision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes AuthDecision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator cannot handle the credentials type.
	// The chain continues to the next authenticator.
	Abstain
)

func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Abstain:
		return "abstain"
	}
	return "unknown"
}

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// Authentication methods recorded on an Identity.
const (
	MethodSession = "session"
	MethodAPIKey  = "apikey"
	MethodDev     = "dev"
)

// Identity represents an authenticated caller.
type Identity struct {
	// Subject is the profile ID for session identities, or a service name
	// for API keys.
	Subject string

	Email string

	// Role is the effective access tier. For session identities it is
	// refreshed from the profile on every request.
	Role api.Role

	// Method is one of the Method* constants.
	Method string
}

// IsAdmin reports whether the caller is an admin or owner. A nil identity
// is never an admin.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role.IsAdmin()
}

// IsOwner reports whether the caller is an owner.
func (id *Identity) IsOwner() bool {
	return id != nil && id.Role.IsOwner()
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// Sentinel errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// AuthChain evaluates authenticators in order using three-outcome voting.
type AuthChain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator
}

// Authenticate runs the chain. Stops on the first Yes or No.
// If all abstain, the result is Abstain and the caller is anonymous.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}
	return AuthResult{Decision: Abstain}
}
