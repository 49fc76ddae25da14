package storage

import "context"

// clientScopeKey is a private type for the client scope context key.
type clientScopeKey struct{}

// SetClientScope restricts project queries made with the returned context
// to projects owned by clientID.
func SetClientScope(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientScopeKey{}, clientID)
}

// GetClientScope extracts the client scope from the context.
// Returns an empty string if the context is unscoped (admin access).
func GetClientScope(ctx context.Context) string {
	if v, ok := ctx.Value(clientScopeKey{}).(string); ok {
		return v
	}
	return ""
}
