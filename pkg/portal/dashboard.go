package portal

import (
	"context"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
)

// Dashboard returns the caller's landing view: visible projects with
// progress and the most recent updates across them. Admins and owners also
// get agency-wide counts.
func (s *Service) Dashboard(ctx context.Context, id *auth.Identity) (*api.Dashboard, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}

	projects, err := s.visibleProjects(ctx)
	if err != nil {
		return nil, err
	}

	d := &api.Dashboard{
		Projects:      projects,
		RecentUpdates: []*api.Update{},
	}

	if len(projects) > 0 {
		ids := make([]string, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
		}
		updates, err := s.store.ListUpdates(ctx, ids...)
		if err != nil {
			return nil, notFound(err, "updates")
		}
		if len(updates) > s.cfg.RecentUpdates {
			updates = updates[:s.cfg.RecentUpdates]
		}
		d.RecentUpdates = updates
	}

	if id.IsAdmin() {
		stats, err := s.adminStats(ctx, projects)
		if err != nil {
			return nil, err
		}
		d.Admin = stats
	}
	return d, nil
}

func (s *Service) adminStats(ctx context.Context, projects []*api.Project) (*api.AdminStats, error) {
	stats := &api.AdminStats{ProjectsByStatus: make(map[api.ProjectStatus]int)}
	for _, p := range projects {
		stats.ProjectsByStatus[p.Status]++
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, notFound(err, "profiles")
	}
	for _, p := range profiles {
		if p.Role == api.RoleUser {
			stats.Clients++
		}
	}

	messages, err := s.store.ListContactMessages(ctx)
	if err != nil {
		return nil, notFound(err, "contact messages")
	}
	stats.ContactMessages = len(messages)
	for _, m := range messages {
		if !m.Delivered {
			stats.UndeliveredMail++
		}
	}
	return stats, nil
}

// ListContactMessages returns the contact inbox, newest first. Admin and
// owner only.
func (s *Service) ListContactMessages(ctx context.Context, id *auth.Identity, opts api.ListOptions) (*api.List[*api.ContactMessage], error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.ListContactMessages(ctx)
	if err != nil {
		return nil, notFound(err, "contact messages")
	}
	return api.Paginate(ordered(messages, opts), opts, func(m *api.ContactMessage) string { return m.ID }), nil
}
