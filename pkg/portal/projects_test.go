package portal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
)

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("defaults to planning", func(t *testing.T) {
		p := f.project(t, f.alice, "Webshop")
		assert.Equal(t, api.ProjectPlanning, p.Status)
		assert.True(t, api.ValidateID(api.PrefixProject, p.ID))
	})

	t.Run("customer cannot create", func(t *testing.T) {
		_, err := f.svc.CreateProject(ctx, f.alice, api.ProjectInput{ClientID: &f.alice.Subject, Name: strPtr("Mine")})
		assert.Equal(t, api.ErrorTypeForbidden, errType(t, err))
	})

	t.Run("client must exist", func(t *testing.T) {
		ghost := api.NewID(api.PrefixProfile)
		_, err := f.svc.CreateProject(ctx, f.admin, api.ProjectInput{ClientID: &ghost, Name: strPtr("Ghost site")})
		assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.CreateProject(ctx, f.admin, api.ProjectInput{ClientID: &f.alice.Subject, Name: strPtr("x")})
		assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))
	})
}

func TestProjectVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alices := f.project(t, f.alice, "Webshop")
	bobs := f.project(t, f.bob, "Brochure site")

	list, err := f.svc.ListProjects(ctx, f.alice, api.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, alices.ID, list.Data[0].ID)

	_, err = f.svc.GetProject(ctx, f.alice, bobs.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err), "foreign project must look missing")

	_, err = f.svc.ListPhases(ctx, f.alice, bobs.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))

	all, err := f.svc.ListProjects(ctx, f.admin, api.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
	assert.Equal(t, bobs.ID, all.Data[0].ID, "newest first")

	asc, err := f.svc.ListProjects(ctx, f.admin, api.ListOptions{Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, alices.ID, asc.Data[0].ID)

	_, err = f.svc.GetProject(ctx, f.alice, "not-an-id")
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
}

func TestListProjects_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.project(t, f.alice, "Site number")
	}

	page, err := f.svc.ListProjects(ctx, f.admin, api.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)

	next, err := f.svc.ListProjects(ctx, f.admin, api.ListOptions{Limit: 2, After: page.LastID})
	require.NoError(t, err)
	assert.Len(t, next.Data, 2)
	assert.NotEqual(t, page.Data[0].ID, next.Data[0].ID)
}

func TestGetProject_Detail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.project(t, f.alice, "Webshop")
	f.phase(t, p.ID, "Discovery", 100)
	f.phase(t, p.ID, "Design", 50)
	f.phase(t, p.ID, "Build", 0)

	_, err := f.svc.RecordMetric(ctx, f.admin, p.ID, MetricInput{Name: "performance", Value: 81, Unit: "score"})
	require.NoError(t, err)
	_, err = f.svc.RecordMetric(ctx, f.admin, p.ID, MetricInput{Name: "performance", Value: 94, Unit: "score"})
	require.NoError(t, err)
	_, err = f.svc.RecordMetric(ctx, f.admin, p.ID, MetricInput{Name: "load_time", Value: 1.2, Unit: "s"})
	require.NoError(t, err)

	d, err := f.svc.GetProject(ctx, f.alice, p.ID)
	require.NoError(t, err)

	assert.Equal(t, 50, d.Project.Progress)
	assert.Equal(t, api.PhaseSummary{Total: 3, Completed: 1, InProgress: 1, Pending: 1, Percent: 50}, d.Summary)
	require.Len(t, d.LatestMetrics, 2)
	assert.Equal(t, "load_time", d.LatestMetrics[0].Name)
	assert.Equal(t, 94.0, d.LatestMetrics[1].Value)
	assert.Empty(t, d.Updates)
	assert.Empty(t, d.Documents)
}

func TestUpdateProject_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	move := func(who *auth.Identity, to api.ProjectStatus) error {
		_, err := f.svc.UpdateProject(ctx, who, p.ID, api.ProjectInput{Status: &to})
		return err
	}

	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, move(f.admin, api.ProjectCompleted)), "planning cannot jump to completed")
	require.NoError(t, move(f.admin, api.ProjectInProgress))
	require.NoError(t, move(f.admin, api.ProjectReview))
	require.NoError(t, move(f.admin, api.ProjectCompleted))
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, move(f.admin, api.ProjectInProgress)), "only owners reopen")
	require.NoError(t, move(f.owner, api.ProjectInProgress))

	assert.Equal(t, api.ErrorTypeForbidden, errType(t, move(f.alice, api.ProjectReview)))
}

func TestUpdateProject_Fields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	updated, err := f.svc.UpdateProject(ctx, f.admin, p.ID, api.ProjectInput{
		Name:    strPtr("Webshop 2.0"),
		Website: strPtr("https://shop.example.dk"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Webshop 2.0", updated.Name)
	assert.Equal(t, "https://shop.example.dk", updated.Website)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))

	_, err = f.svc.UpdateProject(ctx, f.admin, p.ID, api.ProjectInput{Website: strPtr("ftp://nope")})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))

	// Reassigning to another client moves visibility.
	_, err = f.svc.UpdateProject(ctx, f.admin, p.ID, api.ProjectInput{ClientID: &f.bob.Subject})
	require.NoError(t, err)
	_, err = f.svc.GetProject(ctx, f.alice, p.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
	_, err = f.svc.GetProject(ctx, f.bob, p.ID)
	assert.NoError(t, err)

	ghost := api.NewID(api.PrefixProfile)
	_, err = f.svc.UpdateProject(ctx, f.admin, p.ID, api.ProjectInput{ClientID: &ghost})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")
	f.phase(t, p.ID, "Design", 10)

	_, err := f.svc.UploadDocument(ctx, f.alice, p.ID, "brief.txt", "text/plain", strings.NewReader("project brief"))
	require.NoError(t, err)
	require.Equal(t, 1, f.blobs.Len())

	err = f.svc.DeleteProject(ctx, f.admin, p.ID)
	assert.Equal(t, api.ErrorTypeForbidden, errType(t, err), "admins cannot delete")

	require.NoError(t, f.svc.DeleteProject(ctx, f.owner, p.ID))
	assert.Equal(t, 0, f.blobs.Len(), "document blobs removed")

	_, err = f.svc.GetProject(ctx, f.owner, p.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))

	err = f.svc.DeleteProject(ctx, f.owner, p.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
}
