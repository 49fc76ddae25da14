// Package noop provides a development authenticator that accepts every
// request as one fixed identity. It is only wired when a development
// identity is configured.
package noop

import (
	"context"
	"net/http"

	"github.com/nordweb/portal/pkg/auth"
)

// Authenticator always returns Yes with the configured identity.
type Authenticator struct {
	identity auth.Identity
}

// New returns an authenticator that votes Yes for id.
func New(id auth.Identity) *Authenticator {
	id.Method = auth.MethodDev
	return &Authenticator{identity: id}
}

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.AuthResult {
	id := a.identity
	return auth.AuthResult{Decision: auth.Yes, Identity: &id}
}
