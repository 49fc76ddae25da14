// Package portal implements the customer and admin portal operations on
// projects and their phases, updates, metrics and documents.
//
// Every operation takes the caller's identity. Customers (role user) see
// only the projects they are the client of; admins and owners see all.
// Projects outside the caller's view are reported as not found so their
// existence does not leak.
package portal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/blob"
	"github.com/nordweb/portal/pkg/storage"
)

// Defaults for Config.
const (
	DefaultMaxDocumentBytes = 25 << 20
	DefaultRecentUpdates    = 10
)

// Config tunes the portal service.
type Config struct {
	// MaxDocumentBytes caps a single upload.
	MaxDocumentBytes int64

	// RecentUpdates is how many updates the dashboard shows.
	RecentUpdates int
}

// Service implements the portal operations.
type Service struct {
	store storage.Store
	blobs blob.Store
	cfg   Config
	now   func() time.Time
}

// New creates a portal service.
func New(store storage.Store, blobs blob.Store, cfg Config) *Service {
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if cfg.RecentUpdates <= 0 {
		cfg.RecentUpdates = DefaultRecentUpdates
	}
	return &Service{store: store, blobs: blobs, cfg: cfg, now: time.Now}
}

// MaxDocumentBytes returns the upload limit.
func (s *Service) MaxDocumentBytes() int64 {
	return s.cfg.MaxDocumentBytes
}

// scope returns ctx restricted to what id may see.
func scope(ctx context.Context, id *auth.Identity) (context.Context, error) {
	if id == nil {
		return nil, api.NewUnauthorizedError("authentication required")
	}
	if id.IsAdmin() {
		return ctx, nil
	}
	return storage.SetClientScope(ctx, id.Subject), nil
}

// authorize checks the caller's role and returns the scoped context.
func authorize(ctx context.Context, id *auth.Identity, min api.Role) (context.Context, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	if !id.Role.AtLeast(min) {
		return nil, api.NewForbiddenError("insufficient role")
	}
	return ctx, nil
}

// project loads a project visible in ctx.
func (s *Service) project(ctx context.Context, projectID string) (*api.Project, error) {
	if !api.ValidateID(api.PrefixProject, projectID) {
		return nil, api.NewNotFoundError("project not found")
	}
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	return p, nil
}

// notFound maps storage sentinels to API errors.
func notFound(err error, what string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return api.NewNotFoundError(what + " not found")
	case errors.Is(err, storage.ErrConflict):
		return api.NewConflictError("id", what+" already exists")
	}
	return fmt.Errorf("%s: %w", what, err)
}

// ordered returns items in the requested order. Stores return newest first.
func ordered[T any](items []T, opts api.ListOptions) []T {
	if opts.Order != "asc" {
		return items
	}
	out := slices.Clone(items)
	slices.Reverse(out)
	return out
}
