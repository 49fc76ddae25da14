// Package memory provides an in-memory implementation of storage.Store
// for tests and single-process demos. Records are lost when the process
// restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/storage"
)

// Store is an in-memory storage.Store guarded by a single RWMutex.
// Records are copied on the way in and out so callers never share
// memory with the store.
type Store struct {
	mu sync.RWMutex

	profiles map[string]*api.Credentials
	emails   map[string]string // normalized email -> profile ID

	projects  map[string]*api.Project
	phases    map[string]*api.Phase
	updates   map[string]*api.Update
	metrics   map[string]*api.Metric
	documents map[string]*api.Document
	messages  map[string]*api.ContactMessage
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		profiles:  make(map[string]*api.Credentials),
		emails:    make(map[string]string),
		projects:  make(map[string]*api.Project),
		phases:    make(map[string]*api.Phase),
		updates:   make(map[string]*api.Update),
		metrics:   make(map[string]*api.Metric),
		documents: make(map[string]*api.Document),
		messages:  make(map[string]*api.ContactMessage),
	}
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

func (s *Store) CreateProfile(_ context.Context, cred *api.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := api.NormalizeEmail(cred.Profile.Email)
	if _, exists := s.profiles[cred.Profile.ID]; exists {
		return storage.ErrConflict
	}
	if _, exists := s.emails[email]; exists {
		return storage.ErrConflict
	}

	s.profiles[cred.Profile.ID] = cloneCredentials(cred)
	s.emails[email] = cred.Profile.ID
	return nil
}

func (s *Store) GetProfile(_ context.Context, id string) (*api.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p := c.Profile
	return &p, nil
}

func (s *Store) GetCredentials(_ context.Context, id string) (*api.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneCredentials(c), nil
}

func (s *Store) GetCredentialsByEmail(_ context.Context, email string) (*api.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[api.NormalizeEmail(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneCredentials(s.profiles[id]), nil
}

// UpdateProfile replaces the mutable profile fields. The email is part of
// the identity and is not changed here.
func (s *Store) UpdateProfile(_ context.Context, p *api.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.profiles[p.ID]
	if !ok {
		return storage.ErrNotFound
	}
	c.Profile.FullName = p.FullName
	c.Profile.Company = p.Company
	c.Profile.Phone = p.Phone
	c.Profile.Role = p.Role
	c.Profile.UpdatedAt = p.UpdatedAt
	return nil
}

func (s *Store) SetPasswordHash(_ context.Context, id string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.profiles[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.PasswordHash = append([]byte(nil), hash...)
	return nil
}

func (s *Store) ListProfiles(_ context.Context) ([]*api.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Profile, 0, len(s.profiles))
	for _, c := range s.profiles {
		p := c.Profile
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---------------------------------------------------------------------------
// Contact messages
// ---------------------------------------------------------------------------

func (s *Store) CreateContactMessage(_ context.Context, m *api.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[m.ID]; exists {
		return storage.ErrConflict
	}
	c := *m
	s.messages[m.ID] = &c
	return nil
}

func (s *Store) MarkContactDelivered(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return storage.ErrNotFound
	}
	m.Delivered = true
	return nil
}

func (s *Store) ListContactMessages(_ context.Context) ([]*api.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.ContactMessage, 0, len(s.messages))
	for _, m := range s.messages {
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func cloneCredentials(c *api.Credentials) *api.Credentials {
	return &api.Credentials{
		Profile:      c.Profile,
		PasswordHash: append([]byte(nil), c.PasswordHash...),
	}
}

// inScope reports whether the project is visible under the context's
// client scope.
func inScope(ctx context.Context, p *api.Project) bool {
	scope := storage.GetClientScope(ctx)
	return scope == "" || scope == p.ClientID
}
