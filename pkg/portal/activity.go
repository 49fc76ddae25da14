package portal

import (
	"context"
	"strings"
	"time"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
)

// UpdateInput is the body of a new project update.
type UpdateInput struct {
	Title string         `json:"title"`
	Body  string         `json:"body,omitempty"`
	Kind  api.UpdateKind `json:"kind,omitempty"`
}

// MetricInput is the body of a new metric reading. RecordedAt defaults to
// now.
type MetricInput struct {
	Name       string     `json:"name"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// ListUpdates returns the updates of a visible project, newest first.
func (s *Service) ListUpdates(ctx context.Context, id *auth.Identity, projectID string, opts api.ListOptions) (*api.List[*api.Update], error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	updates, err := s.store.ListUpdates(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "updates")
	}
	return api.Paginate(ordered(updates, opts), opts, func(u *api.Update) string { return u.ID }), nil
}

// PostUpdate adds an update authored by the caller. Admin and owner only.
func (s *Service) PostUpdate(ctx context.Context, id *auth.Identity, projectID string, in UpdateInput) (*api.Update, error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	u := &api.Update{
		ID:        api.NewID(api.PrefixUpdate),
		ProjectID: p.ID,
		AuthorID:  id.Subject,
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
		Kind:      in.Kind,
		CreatedAt: s.now().UTC(),
	}
	if apiErr := api.ValidateUpdate(u); apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.CreateUpdate(ctx, u); err != nil {
		return nil, notFound(err, "update")
	}
	return u, nil
}

// ListMetrics returns every reading of a visible project, newest first.
func (s *Service) ListMetrics(ctx context.Context, id *auth.Identity, projectID string) ([]*api.Metric, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	metrics, err := s.store.ListMetrics(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "metrics")
	}
	return metrics, nil
}

// RecordMetric stores a reading. Admin and owner only, which includes API
// keys configured with the admin role.
func (s *Service) RecordMetric(ctx context.Context, id *auth.Identity, projectID string, in MetricInput) (*api.Metric, error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	m := &api.Metric{
		ID:         api.NewID(api.PrefixMetric),
		ProjectID:  p.ID,
		Name:       strings.TrimSpace(in.Name),
		Value:      in.Value,
		Unit:       strings.TrimSpace(in.Unit),
		RecordedAt: s.now().UTC(),
	}
	if in.RecordedAt != nil {
		m.RecordedAt = in.RecordedAt.UTC()
	}
	if apiErr := api.ValidateMetric(m); apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.CreateMetric(ctx, m); err != nil {
		return nil, notFound(err, "metric")
	}
	return m, nil
}
