package memory

import (
	"context"
	"sort"
	"time"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/storage"
)

func (s *Store) CreateProject(_ context.Context, p *api.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[p.ID]; exists {
		return storage.ErrConflict
	}
	s.projects[p.ID] = cloneProject(p)
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*api.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || !inScope(ctx, p) {
		return nil, storage.ErrNotFound
	}
	return cloneProject(p), nil
}

func (s *Store) UpdateProject(ctx context.Context, p *api.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.projects[p.ID]
	if !ok || !inScope(ctx, old) {
		return storage.ErrNotFound
	}
	c := cloneProject(p)
	c.CreatedAt = old.CreatedAt
	s.projects[p.ID] = c
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || !inScope(ctx, p) {
		return storage.ErrNotFound
	}
	delete(s.projects, id)

	for k, v := range s.phases {
		if v.ProjectID == id {
			delete(s.phases, k)
		}
	}
	for k, v := range s.updates {
		if v.ProjectID == id {
			delete(s.updates, k)
		}
	}
	for k, v := range s.metrics {
		if v.ProjectID == id {
			delete(s.metrics, k)
		}
	}
	for k, v := range s.documents {
		if v.ProjectID == id {
			delete(s.documents, k)
		}
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*api.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Project, 0)
	for _, p := range s.projects {
		if inScope(ctx, p) {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// ---------------------------------------------------------------------------
// Phases
// ---------------------------------------------------------------------------

func (s *Store) CreatePhase(_ context.Context, ph *api.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[ph.ProjectID]; !ok {
		return storage.ErrNotFound
	}
	if _, exists := s.phases[ph.ID]; exists {
		return storage.ErrConflict
	}
	s.phases[ph.ID] = clonePhase(ph)
	return nil
}

func (s *Store) GetPhase(_ context.Context, projectID, id string) (*api.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ph, ok := s.phases[id]
	if !ok || ph.ProjectID != projectID {
		return nil, storage.ErrNotFound
	}
	return clonePhase(ph), nil
}

func (s *Store) UpdatePhase(_ context.Context, ph *api.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.phases[ph.ID]
	if !ok || old.ProjectID != ph.ProjectID {
		return storage.ErrNotFound
	}
	c := clonePhase(ph)
	c.CreatedAt = old.CreatedAt
	s.phases[ph.ID] = c
	return nil
}

func (s *Store) DeletePhase(_ context.Context, projectID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ph, ok := s.phases[id]
	if !ok || ph.ProjectID != projectID {
		return storage.ErrNotFound
	}
	delete(s.phases, id)
	return nil
}

func (s *Store) ListPhases(_ context.Context, projectID string) ([]*api.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Phase, 0)
	for _, ph := range s.phases {
		if ph.ProjectID == projectID {
			out = append(out, clonePhase(ph))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---------------------------------------------------------------------------
// Updates, metrics, documents
// ---------------------------------------------------------------------------

func (s *Store) CreateUpdate(_ context.Context, u *api.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[u.ProjectID]; !ok {
		return storage.ErrNotFound
	}
	if _, exists := s.updates[u.ID]; exists {
		return storage.ErrConflict
	}
	c := *u
	s.updates[u.ID] = &c
	return nil
}

func (s *Store) ListUpdates(_ context.Context, projectIDs ...string) ([]*api.Update, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		want[id] = true
	}

	out := make([]*api.Update, 0)
	for _, u := range s.updates {
		if want[u.ProjectID] {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) CreateMetric(_ context.Context, m *api.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[m.ProjectID]; !ok {
		return storage.ErrNotFound
	}
	if _, exists := s.metrics[m.ID]; exists {
		return storage.ErrConflict
	}
	c := *m
	s.metrics[m.ID] = &c
	return nil
}

func (s *Store) ListMetrics(_ context.Context, projectID string) ([]*api.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Metric, 0)
	for _, m := range s.metrics {
		if m.ProjectID == projectID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].RecordedAt, out[j].RecordedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) CreateDocument(_ context.Context, d *api.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[d.ProjectID]; !ok {
		return storage.ErrNotFound
	}
	if _, exists := s.documents[d.ID]; exists {
		return storage.ErrConflict
	}
	c := *d
	s.documents[d.ID] = &c
	return nil
}

func (s *Store) GetDocument(_ context.Context, projectID, id string) (*api.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.documents[id]
	if !ok || d.ProjectID != projectID {
		return nil, storage.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (s *Store) DeleteDocument(_ context.Context, projectID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[id]
	if !ok || d.ProjectID != projectID {
		return storage.ErrNotFound
	}
	delete(s.documents, id)
	return nil
}

func (s *Store) ListDocuments(_ context.Context, projectID string) ([]*api.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Document, 0)
	for _, d := range s.documents {
		if d.ProjectID == projectID {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// newerFirst orders by time descending with the ID as tie breaker.
func newerFirst(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}

func cloneProject(p *api.Project) *api.Project {
	c := *p
	c.StartDate = cloneTime(p.StartDate)
	c.TargetDate = cloneTime(p.TargetDate)
	c.Progress = 0
	return &c
}

func clonePhase(ph *api.Phase) *api.Phase {
	c := *ph
	c.StartedAt = cloneTime(ph.StartedAt)
	c.CompletedAt = cloneTime(ph.CompletedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
