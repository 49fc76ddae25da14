package portal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordweb/portal/pkg/api"
)

func TestCreatePhase_Position(t *testing.T) {
	f := newFixture(t)
	p := f.project(t, f.alice, "Webshop")

	first := f.phase(t, p.ID, "Discovery", 0)
	second := f.phase(t, p.ID, "Design", 0)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	explicit, err := f.svc.CreatePhase(context.Background(), f.admin, p.ID, api.PhaseInput{
		Name:     strPtr("Launch"),
		Position: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, explicit.Position)
	assert.Equal(t, 11, f.phase(t, p.ID, "Aftercare", 0).Position)

	phases, err := f.svc.ListPhases(context.Background(), f.alice, p.ID)
	require.NoError(t, err)
	require.Len(t, phases, 4)
	assert.Equal(t, "Discovery", phases[0].Name)
	assert.Equal(t, "Aftercare", phases[3].Name)
}

func TestCreatePhase_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	_, err := f.svc.CreatePhase(ctx, f.alice, p.ID, api.PhaseInput{Name: strPtr("Design")})
	assert.Equal(t, api.ErrorTypeForbidden, errType(t, err))

	_, err = f.svc.CreatePhase(ctx, f.admin, p.ID, api.PhaseInput{Name: strPtr("")})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))

	_, err = f.svc.CreatePhase(ctx, f.admin, p.ID, api.PhaseInput{Name: strPtr("Design"), Percent: intPtr(101)})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))

	missing := api.NewID(api.PrefixProject)
	_, err = f.svc.CreatePhase(ctx, f.admin, missing, api.PhaseInput{Name: strPtr("Design")})
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
}

func TestUpdatePhase_Timestamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")
	ph := f.phase(t, p.ID, "Build", 0)

	assert.Equal(t, api.PhasePending, ph.Status)
	assert.Nil(t, ph.StartedAt)
	assert.Nil(t, ph.CompletedAt)

	ph, err := f.svc.UpdatePhase(ctx, f.admin, p.ID, ph.ID, api.PhaseInput{Percent: intPtr(40)})
	require.NoError(t, err)
	assert.Equal(t, api.PhaseInProgress, ph.Status)
	require.NotNil(t, ph.StartedAt)
	assert.Nil(t, ph.CompletedAt)
	started := *ph.StartedAt

	ph, err = f.svc.UpdatePhase(ctx, f.admin, p.ID, ph.ID, api.PhaseInput{Percent: intPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, api.PhaseCompleted, ph.Status)
	assert.Equal(t, started, *ph.StartedAt, "start time survives completion")
	require.NotNil(t, ph.CompletedAt)

	ph, err = f.svc.UpdatePhase(ctx, f.admin, p.ID, ph.ID, api.PhaseInput{Percent: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, api.PhasePending, ph.Status)
	assert.Nil(t, ph.StartedAt)
	assert.Nil(t, ph.CompletedAt)

	completed := api.PhaseCompleted
	_, err = f.svc.UpdatePhase(ctx, f.admin, p.ID, ph.ID, api.PhaseInput{Status: &completed})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err), "completed requires 100 percent")
}

func TestDeletePhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")
	ph := f.phase(t, p.ID, "Build", 0)

	assert.Equal(t, api.ErrorTypeForbidden, errType(t, f.svc.DeletePhase(ctx, f.alice, p.ID, ph.ID)))
	require.NoError(t, f.svc.DeletePhase(ctx, f.admin, p.ID, ph.ID))
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, f.svc.DeletePhase(ctx, f.admin, p.ID, ph.ID)))

	_, err := f.svc.UpdatePhase(ctx, f.admin, p.ID, ph.ID, api.PhaseInput{Percent: intPtr(10)})
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
}
