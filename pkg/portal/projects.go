package portal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/progress"
	"github.com/nordweb/portal/pkg/storage"
)

// ListProjects returns the visible projects with their derived progress.
func (s *Service) ListProjects(ctx context.Context, id *auth.Identity, opts api.ListOptions) (*api.List[*api.Project], error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.visibleProjects(ctx)
	if err != nil {
		return nil, err
	}
	return api.Paginate(ordered(projects, opts), opts, func(p *api.Project) string { return p.ID }), nil
}

func (s *Service) visibleProjects(ctx context.Context) ([]*api.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, notFound(err, "projects")
	}
	for _, p := range projects {
		phases, err := s.store.ListPhases(ctx, p.ID)
		if err != nil {
			return nil, notFound(err, "phases")
		}
		p.Progress = progress.AverageProgress(phases)
	}
	return projects, nil
}

// GetProject returns the project detail view: phases, summary, latest
// metric readings, updates and documents.
func (s *Service) GetProject(ctx context.Context, id *auth.Identity, projectID string) (*api.ProjectDetail, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	phases, err := s.store.ListPhases(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "phases")
	}
	metrics, err := s.store.ListMetrics(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "metrics")
	}
	updates, err := s.store.ListUpdates(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "updates")
	}
	docs, err := s.store.ListDocuments(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "documents")
	}

	summary := progress.Summarize(phases)
	p.Progress = summary.Percent

	return &api.ProjectDetail{
		Project:       p,
		Phases:        phases,
		Summary:       summary,
		LatestMetrics: progress.LatestMetrics(metrics),
		Updates:       updates,
		Documents:     docs,
	}, nil
}

// CreateProject adds a project for an existing client. Admin and owner only.
func (s *Service) CreateProject(ctx context.Context, id *auth.Identity, in api.ProjectInput) (*api.Project, error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &api.Project{
		ID:        api.NewID(api.PrefixProject),
		Status:    api.ProjectPlanning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	api.ApplyProjectInput(p, in)
	if apiErr := api.ValidateProject(p); apiErr != nil {
		return nil, apiErr
	}
	if err := s.checkClient(ctx, p.ClientID); err != nil {
		return nil, err
	}

	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, notFound(err, "project")
	}
	slog.Info("project created", "project_id", p.ID, "client_id", p.ClientID, "by", id.Subject)
	return p, nil
}

// UpdateProject changes project fields. Status changes follow the project
// lifecycle. Admin and owner only.
func (s *Service) UpdateProject(ctx context.Context, id *auth.Identity, projectID string, in api.ProjectInput) (*api.Project, error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	from, client := p.Status, p.ClientID
	api.ApplyProjectInput(p, in)
	if apiErr := api.ValidateProject(p); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := api.ValidateProjectTransition(from, p.Status, id.Role); apiErr != nil {
		return nil, apiErr
	}
	if p.ClientID != client {
		if err := s.checkClient(ctx, p.ClientID); err != nil {
			return nil, err
		}
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, notFound(err, "project")
	}
	if from != p.Status {
		slog.Info("project status changed", "project_id", p.ID, "from", from, "to", p.Status, "by", id.Subject)
	}
	return p, nil
}

// DeleteProject removes a project, its child records and its document
// files. Owner only.
func (s *Service) DeleteProject(ctx context.Context, id *auth.Identity, projectID string) error {
	ctx, err := authorize(ctx, id, api.RoleOwner)
	if err != nil {
		return err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return err
	}

	docs, err := s.store.ListDocuments(ctx, p.ID)
	if err != nil {
		return notFound(err, "documents")
	}
	if err := s.store.DeleteProject(ctx, p.ID); err != nil {
		return notFound(err, "project")
	}

	for _, d := range docs {
		if err := s.blobs.Delete(ctx, d.StorageKey); err != nil {
			slog.Warn("orphaned document blob", "key", d.StorageKey, "error", err)
		}
	}
	slog.Info("project deleted", "project_id", p.ID, "documents", len(docs), "by", id.Subject)
	return nil
}

// checkClient verifies that clientID names an existing profile.
func (s *Service) checkClient(ctx context.Context, clientID string) error {
	_, err := s.store.GetProfile(ctx, clientID)
	if errors.Is(err, storage.ErrNotFound) {
		return api.NewInvalidRequestError("client_id", "client does not exist")
	}
	if err != nil {
		return notFound(err, "client")
	}
	return nil
}
