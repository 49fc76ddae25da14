package portal

import (
	"context"
	"time"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/debug"
)

// ListPhases returns the phases of a visible project ordered by position.
func (s *Service) ListPhases(ctx context.Context, id *auth.Identity, projectID string) ([]*api.Phase, error) {
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
	return phases, nil
}

// CreatePhase adds a phase. Without an explicit position it goes after the
// last phase. Admin and owner only.
func (s *Service) CreatePhase(ctx context.Context, id *auth.Identity, projectID string, in api.PhaseInput) (*api.Phase, error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ph := &api.Phase{
		ID:        api.NewID(api.PrefixPhase),
		ProjectID: p.ID,
		Status:    api.PhasePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Position == nil {
		existing, err := s.store.ListPhases(ctx, p.ID)
		if err != nil {
			return nil, notFound(err, "phases")
		}
		for _, e := range existing {
			if e.Position >= ph.Position {
				ph.Position = e.Position + 1
			}
		}
	}
	api.ApplyPhaseInput(ph, in)
	if apiErr := api.ValidatePhase(ph); apiErr != nil {
		return nil, apiErr
	}
	stampPhase(ph, "", now)

	if err := s.store.CreatePhase(ctx, ph); err != nil {
		return nil, notFound(err, "phase")
	}
	debug.Log("storage", "phase created", "project_id", p.ID, "phase_id", ph.ID, "position", ph.Position)
	return ph, nil
}

// UpdatePhase changes a phase. Moving the status stamps the start and
// completion times. Admin and owner only.
func (s *Service) UpdatePhase(ctx context.Context, id *auth.Identity, projectID, phaseID string, in api.PhaseInput) (*api.Phase, error) {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ph, err := s.store.GetPhase(ctx, p.ID, phaseID)
	if err != nil {
		return nil, notFound(err, "phase")
	}

	from := ph.Status
	api.ApplyPhaseInput(ph, in)
	if apiErr := api.ValidatePhase(ph); apiErr != nil {
		return nil, apiErr
	}
	now := s.now().UTC()
	stampPhase(ph, from, now)
	ph.UpdatedAt = now

	if err := s.store.UpdatePhase(ctx, ph); err != nil {
		return nil, notFound(err, "phase")
	}
	return ph, nil
}

// DeletePhase removes a phase. Admin and owner only.
func (s *Service) DeletePhase(ctx context.Context, id *auth.Identity, projectID, phaseID string) error {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.store.DeletePhase(ctx, p.ID, phaseID); err != nil {
		return notFound(err, "phase")
	}
	return nil
}

// stampPhase keeps StartedAt and CompletedAt in line with a status move.
func stampPhase(ph *api.Phase, from api.PhaseStatus, now time.Time) {
	if from == ph.Status {
		return
	}
	switch ph.Status {
	case api.PhasePending:
		ph.StartedAt = nil
		ph.CompletedAt = nil
	case api.PhaseInProgress:
		if ph.StartedAt == nil {
			ph.StartedAt = &now
		}
		ph.CompletedAt = nil
	case api.PhaseCompleted:
		if ph.StartedAt == nil {
			ph.StartedAt = &now
		}
		ph.CompletedAt = &now
	}
}
