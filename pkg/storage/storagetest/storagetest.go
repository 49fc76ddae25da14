// Package storagetest holds the conformance suite every storage.Store
// adapter runs against. Timestamps are truncated to microseconds so the
// suite holds for databases with coarser clocks.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/storage"
)

// Factory returns an empty store. Cleanup is the factory's concern.
type Factory func(t *testing.T) storage.Store

var t0 = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

// Run executes the full suite against the adapter built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, newStore(t)) })
	t.Run("ProfileConflicts", func(t *testing.T) { testProfileConflicts(t, newStore(t)) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, newStore(t)) })
	t.Run("ClientScope", func(t *testing.T) { testClientScope(t, newStore(t)) })
	t.Run("Phases", func(t *testing.T) { testPhases(t, newStore(t)) })
	t.Run("UpdatesAndMetrics", func(t *testing.T) { testUpdatesAndMetrics(t, newStore(t)) })
	t.Run("Documents", func(t *testing.T) { testDocuments(t, newStore(t)) })
	t.Run("ChildOfMissingProject", func(t *testing.T) { testChildOfMissingProject(t, newStore(t)) })
	t.Run("DeleteProjectCascades", func(t *testing.T) { testDeleteCascades(t, newStore(t)) })
	t.Run("ContactMessages", func(t *testing.T) { testContactMessages(t, newStore(t)) })
}

// MakeProfile returns credentials for a new profile created at the given
// minute offset.
func MakeProfile(id, email string, role api.Role, minute int) *api.Credentials {
	return &api.Credentials{
		Profile: api.Profile{
			ID:        id,
			Email:     email,
			FullName:  "Test " + id,
			Role:      role,
			CreatedAt: at(minute),
			UpdatedAt: at(minute),
		},
		PasswordHash: []byte("hash-" + id),
	}
}

// MakeProject returns a planning project owned by clientID.
func MakeProject(id, clientID string, minute int) *api.Project {
	return &api.Project{
		ID:        id,
		ClientID:  clientID,
		Name:      "Project " + id,
		Status:    api.ProjectPlanning,
		CreatedAt: at(minute),
		UpdatedAt: at(minute),
	}
}

func mustCreateProfile(t *testing.T, s storage.Store, c *api.Credentials) {
	t.Helper()
	if err := s.CreateProfile(context.Background(), c); err != nil {
		t.Fatalf("CreateProfile(%s): %v", c.Profile.ID, err)
	}
}

func mustCreateProject(t *testing.T, s storage.Store, p *api.Project) {
	t.Helper()
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject(%s): %v", p.ID, err)
	}
}

func testProfiles(t *testing.T, s storage.Store) {
	ctx := context.Background()

	mustCreateProfile(t, s, MakeProfile("usr_b", "Bo@Example.dk", api.RoleUser, 2))
	mustCreateProfile(t, s, MakeProfile("usr_a", "anna@example.dk", api.RoleOwner, 1))

	p, err := s.GetProfile(ctx, "usr_b")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Email != "Bo@Example.dk" || p.Role != api.RoleUser {
		t.Errorf("GetProfile = %+v", p)
	}
	if !p.CreatedAt.Equal(at(2)) {
		t.Errorf("CreatedAt = %v, want %v", p.CreatedAt, at(2))
	}

	c, err := s.GetCredentialsByEmail(ctx, "  bo@EXAMPLE.dk ")
	if err != nil {
		t.Fatalf("GetCredentialsByEmail: %v", err)
	}
	if c.Profile.ID != "usr_b" || string(c.PasswordHash) != "hash-usr_b" {
		t.Errorf("GetCredentialsByEmail = %s / %q", c.Profile.ID, c.PasswordHash)
	}

	if _, err := s.GetCredentialsByEmail(ctx, "nobody@example.dk"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown email: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetProfile(ctx, "usr_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want ErrNotFound", err)
	}

	p.FullName = "Bo Hansen"
	p.Company = "Hansen ApS"
	p.Phone = "+45 12345678"
	p.Role = api.RoleAdmin
	p.UpdatedAt = at(10)
	if err := s.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got, _ := s.GetProfile(ctx, "usr_b")
	if got.FullName != "Bo Hansen" || got.Company != "Hansen ApS" || got.Phone != "+45 12345678" || got.Role != api.RoleAdmin {
		t.Errorf("after update = %+v", got)
	}
	if !got.UpdatedAt.Equal(at(10)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, at(10))
	}

	if err := s.UpdateProfile(ctx, &api.Profile{ID: "usr_missing", Role: api.RoleUser}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateProfile(missing) = %v, want ErrNotFound", err)
	}

	if err := s.SetPasswordHash(ctx, "usr_b", []byte("new-hash")); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}
	c, _ = s.GetCredentials(ctx, "usr_b")
	if string(c.PasswordHash) != "new-hash" {
		t.Errorf("PasswordHash = %q, want %q", c.PasswordHash, "new-hash")
	}

	list, err := s.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(list) != 2 || list[0].ID != "usr_a" || list[1].ID != "usr_b" {
		t.Errorf("ListProfiles order = %v, want oldest first", profileIDs(list))
	}
}

func testProfileConflicts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_a", "anna@example.dk", api.RoleUser, 1))

	if err := s.CreateProfile(ctx, MakeProfile("usr_a", "other@example.dk", api.RoleUser, 2)); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate id: err = %v, want ErrConflict", err)
	}
	if err := s.CreateProfile(ctx, MakeProfile("usr_b", "ANNA@example.dk", api.RoleUser, 2)); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}
}

func testProjects(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_c", "c@example.dk", api.RoleUser, 0))

	start := at(60)
	p1 := MakeProject("prj_1", "usr_c", 1)
	p1.Description = "Ny hjemmeside"
	p1.Website = "https://example.dk"
	p1.StartDate = &start
	mustCreateProject(t, s, p1)
	mustCreateProject(t, s, MakeProject("prj_2", "usr_c", 2))

	if err := s.CreateProject(ctx, MakeProject("prj_1", "usr_c", 3)); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate project: err = %v, want ErrConflict", err)
	}

	got, err := s.GetProject(ctx, "prj_1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if got.Description != "Ny hjemmeside" || got.Website != "https://example.dk" {
		t.Errorf("GetProject = %+v", got)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) || got.TargetDate != nil {
		t.Errorf("dates = %v / %v", got.StartDate, got.TargetDate)
	}

	got.Status = api.ProjectInProgress
	got.Name = "Renamed"
	got.UpdatedAt = at(30)
	if err := s.UpdateProject(ctx, got); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	got, _ = s.GetProject(ctx, "prj_1")
	if got.Status != api.ProjectInProgress || got.Name != "Renamed" {
		t.Errorf("after update = %+v", got)
	}
	if !got.CreatedAt.Equal(at(1)) || !got.UpdatedAt.Equal(at(30)) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	list, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 2 || list[0].ID != "prj_2" || list[1].ID != "prj_1" {
		t.Errorf("ListProjects = %v, want newest first", projectIDs(list))
	}

	if err := s.UpdateProject(ctx, MakeProject("prj_missing", "usr_c", 0)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateProject(missing) = %v, want ErrNotFound", err)
	}
}

func testClientScope(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_a", "a@example.dk", api.RoleUser, 0))
	mustCreateProfile(t, s, MakeProfile("usr_b", "b@example.dk", api.RoleUser, 0))
	mustCreateProject(t, s, MakeProject("prj_a", "usr_a", 1))
	mustCreateProject(t, s, MakeProject("prj_b", "usr_b", 2))

	scoped := storage.SetClientScope(ctx, "usr_a")

	list, err := s.ListProjects(scoped)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(list) != 1 || list[0].ID != "prj_a" {
		t.Errorf("scoped ListProjects = %v, want [prj_a]", projectIDs(list))
	}

	if _, err := s.GetProject(scoped, "prj_b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProject(other client) = %v, want ErrNotFound", err)
	}
	if err := s.UpdateProject(scoped, MakeProject("prj_b", "usr_b", 2)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateProject(other client) = %v, want ErrNotFound", err)
	}
	if err := s.DeleteProject(scoped, "prj_b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteProject(other client) = %v, want ErrNotFound", err)
	}

	all, _ := s.ListProjects(ctx)
	if len(all) != 2 {
		t.Errorf("unscoped ListProjects len = %d, want 2", len(all))
	}
}

func testPhases(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_c", "c@example.dk", api.RoleUser, 0))
	mustCreateProject(t, s, MakeProject("prj_1", "usr_c", 1))
	mustCreateProject(t, s, MakeProject("prj_2", "usr_c", 2))

	phases := []*api.Phase{
		{ID: "phs_c", ProjectID: "prj_1", Name: "Launch", Position: 2, Status: api.PhasePending, CreatedAt: at(3), UpdatedAt: at(3)},
		{ID: "phs_a", ProjectID: "prj_1", Name: "Design", Position: 0, Status: api.PhaseCompleted, Percent: 100, CreatedAt: at(4), UpdatedAt: at(4)},
		{ID: "phs_b", ProjectID: "prj_1", Name: "Build", Position: 1, Status: api.PhaseInProgress, Percent: 40, CreatedAt: at(5), UpdatedAt: at(5)},
		{ID: "phs_x", ProjectID: "prj_2", Name: "Other", Position: 0, Status: api.PhasePending, CreatedAt: at(6), UpdatedAt: at(6)},
	}
	for _, ph := range phases {
		if err := s.CreatePhase(ctx, ph); err != nil {
			t.Fatalf("CreatePhase(%s): %v", ph.ID, err)
		}
	}

	list, err := s.ListPhases(ctx, "prj_1")
	if err != nil {
		t.Fatalf("ListPhases: %v", err)
	}
	if len(list) != 3 || list[0].ID != "phs_a" || list[1].ID != "phs_b" || list[2].ID != "phs_c" {
		t.Fatalf("ListPhases order wrong: %d phases", len(list))
	}

	if _, err := s.GetPhase(ctx, "prj_2", "phs_a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPhase(wrong project) = %v, want ErrNotFound", err)
	}

	ph, err := s.GetPhase(ctx, "prj_1", "phs_b")
	if err != nil {
		t.Fatalf("GetPhase: %v", err)
	}
	started := at(7)
	done := at(8)
	ph.Percent = 100
	ph.Status = api.PhaseCompleted
	ph.StartedAt = &started
	ph.CompletedAt = &done
	ph.UpdatedAt = at(8)
	if err := s.UpdatePhase(ctx, ph); err != nil {
		t.Fatalf("UpdatePhase: %v", err)
	}
	ph, _ = s.GetPhase(ctx, "prj_1", "phs_b")
	if ph.Percent != 100 || ph.Status != api.PhaseCompleted {
		t.Errorf("after update = %+v", ph)
	}
	if ph.CompletedAt == nil || !ph.CompletedAt.Equal(done) || ph.StartedAt == nil || !ph.StartedAt.Equal(started) {
		t.Errorf("timestamps = %v / %v", ph.StartedAt, ph.CompletedAt)
	}

	if err := s.DeletePhase(ctx, "prj_2", "phs_c"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeletePhase(wrong project) = %v, want ErrNotFound", err)
	}
	if err := s.DeletePhase(ctx, "prj_1", "phs_c"); err != nil {
		t.Fatalf("DeletePhase: %v", err)
	}
	list, _ = s.ListPhases(ctx, "prj_1")
	if len(list) != 2 {
		t.Errorf("ListPhases after delete len = %d, want 2", len(list))
	}
}

func testUpdatesAndMetrics(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_c", "c@example.dk", api.RoleUser, 0))
	mustCreateProject(t, s, MakeProject("prj_1", "usr_c", 1))
	mustCreateProject(t, s, MakeProject("prj_2", "usr_c", 2))
	mustCreateProject(t, s, MakeProject("prj_3", "usr_c", 3))

	updates := []*api.Update{
		{ID: "upd_1", ProjectID: "prj_1", AuthorID: "usr_c", Title: "Kickoff", Kind: api.UpdateMilestone, CreatedAt: at(10)},
		{ID: "upd_2", ProjectID: "prj_2", AuthorID: "usr_c", Title: "Mockups", Body: "Se vedhæftede", Kind: api.UpdateDeliverable, CreatedAt: at(20)},
		{ID: "upd_3", ProjectID: "prj_3", AuthorID: "usr_c", Title: "Hidden", Kind: api.UpdateNote, CreatedAt: at(30)},
	}
	for _, u := range updates {
		if err := s.CreateUpdate(ctx, u); err != nil {
			t.Fatalf("CreateUpdate(%s): %v", u.ID, err)
		}
	}

	got, err := s.ListUpdates(ctx, "prj_1", "prj_2")
	if err != nil {
		t.Fatalf("ListUpdates: %v", err)
	}
	if len(got) != 2 || got[0].ID != "upd_2" || got[1].ID != "upd_1" {
		t.Fatalf("ListUpdates returned %d updates in wrong order", len(got))
	}
	if got[0].Body != "Se vedhæftede" || got[0].Kind != api.UpdateDeliverable {
		t.Errorf("update fields = %+v", got[0])
	}

	none, err := s.ListUpdates(ctx)
	if err != nil {
		t.Fatalf("ListUpdates(): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListUpdates() len = %d, want 0", len(none))
	}

	metrics := []*api.Metric{
		{ID: "met_1", ProjectID: "prj_1", Name: "performance", Value: 71, Unit: "score", RecordedAt: at(10)},
		{ID: "met_2", ProjectID: "prj_1", Name: "performance", Value: 94.5, Unit: "score", RecordedAt: at(20)},
		{ID: "met_3", ProjectID: "prj_2", Name: "visitors", Value: 1200, RecordedAt: at(15)},
	}
	for _, m := range metrics {
		if err := s.CreateMetric(ctx, m); err != nil {
			t.Fatalf("CreateMetric(%s): %v", m.ID, err)
		}
	}
	ms, err := s.ListMetrics(ctx, "prj_1")
	if err != nil {
		t.Fatalf("ListMetrics: %v", err)
	}
	if len(ms) != 2 || ms[0].ID != "met_2" || ms[0].Value != 94.5 || ms[0].Unit != "score" {
		t.Errorf("ListMetrics = %+v", ms)
	}
}

func testDocuments(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_c", "c@example.dk", api.RoleUser, 0))
	mustCreateProject(t, s, MakeProject("prj_1", "usr_c", 1))

	docs := []*api.Document{
		{ID: "doc_1", ProjectID: "prj_1", UploaderID: "usr_c", Name: "brief.pdf", ContentType: "application/pdf", Size: 2048, StorageKey: "projects/prj_1/doc_1/brief.pdf", CreatedAt: at(5)},
		{ID: "doc_2", ProjectID: "prj_1", UploaderID: "usr_c", Name: "logo.svg", ContentType: "image/svg+xml", Size: 512, StorageKey: "projects/prj_1/doc_2/logo.svg", CreatedAt: at(6)},
	}
	for _, d := range docs {
		if err := s.CreateDocument(ctx, d); err != nil {
			t.Fatalf("CreateDocument(%s): %v", d.ID, err)
		}
	}
	if err := s.CreateDocument(ctx, docs[0]); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate document: err = %v, want ErrConflict", err)
	}

	d, err := s.GetDocument(ctx, "prj_1", "doc_1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if d.StorageKey != "projects/prj_1/doc_1/brief.pdf" || d.Size != 2048 || d.ContentType != "application/pdf" {
		t.Errorf("GetDocument = %+v", d)
	}

	list, _ := s.ListDocuments(ctx, "prj_1")
	if len(list) != 2 || list[0].ID != "doc_2" {
		t.Errorf("ListDocuments want newest first, got %d docs", len(list))
	}

	if err := s.DeleteDocument(ctx, "prj_1", "doc_1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument(ctx, "prj_1", "doc_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetDocument after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteDocument(ctx, "prj_1", "doc_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteDocument = %v, want ErrNotFound", err)
	}
}

func testChildOfMissingProject(t *testing.T, s storage.Store) {
	ctx := context.Background()

	if err := s.CreatePhase(ctx, &api.Phase{ID: "phs_1", ProjectID: "prj_none", Name: "x", Status: api.PhasePending, CreatedAt: t0, UpdatedAt: t0}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CreatePhase = %v, want ErrNotFound", err)
	}
	if err := s.CreateUpdate(ctx, &api.Update{ID: "upd_1", ProjectID: "prj_none", Title: "x", Kind: api.UpdateNote, CreatedAt: t0}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CreateUpdate = %v, want ErrNotFound", err)
	}
	if err := s.CreateMetric(ctx, &api.Metric{ID: "met_1", ProjectID: "prj_none", Name: "x", RecordedAt: t0}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CreateMetric = %v, want ErrNotFound", err)
	}
	if err := s.CreateDocument(ctx, &api.Document{ID: "doc_1", ProjectID: "prj_none", Name: "x", StorageKey: "k", CreatedAt: t0}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CreateDocument = %v, want ErrNotFound", err)
	}
}

func testDeleteCascades(t *testing.T, s storage.Store) {
	ctx := context.Background()
	mustCreateProfile(t, s, MakeProfile("usr_c", "c@example.dk", api.RoleUser, 0))
	mustCreateProject(t, s, MakeProject("prj_1", "usr_c", 1))
	mustCreateProject(t, s, MakeProject("prj_keep", "usr_c", 2))

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.CreatePhase(ctx, &api.Phase{ID: "phs_1", ProjectID: "prj_1", Name: "x", Status: api.PhasePending, CreatedAt: t0, UpdatedAt: t0}))
	must(s.CreateUpdate(ctx, &api.Update{ID: "upd_1", ProjectID: "prj_1", AuthorID: "usr_c", Title: "x", Kind: api.UpdateNote, CreatedAt: t0}))
	must(s.CreateUpdate(ctx, &api.Update{ID: "upd_keep", ProjectID: "prj_keep", AuthorID: "usr_c", Title: "y", Kind: api.UpdateNote, CreatedAt: t0}))
	must(s.CreateMetric(ctx, &api.Metric{ID: "met_1", ProjectID: "prj_1", Name: "x", RecordedAt: t0}))
	must(s.CreateDocument(ctx, &api.Document{ID: "doc_1", ProjectID: "prj_1", UploaderID: "usr_c", Name: "x", StorageKey: "k", CreatedAt: t0}))

	must(s.DeleteProject(ctx, "prj_1"))

	if _, err := s.GetProject(ctx, "prj_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProject after delete = %v, want ErrNotFound", err)
	}
	if phases, _ := s.ListPhases(ctx, "prj_1"); len(phases) != 0 {
		t.Errorf("phases survived delete: %d", len(phases))
	}
	if ms, _ := s.ListMetrics(ctx, "prj_1"); len(ms) != 0 {
		t.Errorf("metrics survived delete: %d", len(ms))
	}
	if docs, _ := s.ListDocuments(ctx, "prj_1"); len(docs) != 0 {
		t.Errorf("documents survived delete: %d", len(docs))
	}
	ups, _ := s.ListUpdates(ctx, "prj_1", "prj_keep")
	if len(ups) != 1 || ups[0].ID != "upd_keep" {
		t.Errorf("ListUpdates after delete = %d updates, want only upd_keep", len(ups))
	}

	if err := s.DeleteProject(ctx, "prj_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteProject = %v, want ErrNotFound", err)
	}
}

func testContactMessages(t *testing.T, s storage.Store) {
	ctx := context.Background()

	m1 := &api.ContactMessage{ID: "msg_1", Name: "Jens", Email: "jens@example.dk", Message: "Vi vil gerne have et tilbud", RemoteAddr: "10.0.0.1", CreatedAt: at(1)}
	m2 := &api.ContactMessage{ID: "msg_2", Name: "Lise", Email: "lise@example.dk", Phone: "+45 11223344", Company: "Lise ApS", Subject: "Webshop", Message: "Hvad koster en webshop?", CreatedAt: at(2)}
	for _, m := range []*api.ContactMessage{m1, m2} {
		if err := s.CreateContactMessage(ctx, m); err != nil {
			t.Fatalf("CreateContactMessage(%s): %v", m.ID, err)
		}
	}
	if err := s.CreateContactMessage(ctx, m1); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate message: err = %v, want ErrConflict", err)
	}

	if err := s.MarkContactDelivered(ctx, "msg_1"); err != nil {
		t.Fatalf("MarkContactDelivered: %v", err)
	}
	if err := s.MarkContactDelivered(ctx, "msg_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("MarkContactDelivered(missing) = %v, want ErrNotFound", err)
	}

	list, err := s.ListContactMessages(ctx)
	if err != nil {
		t.Fatalf("ListContactMessages: %v", err)
	}
	if len(list) != 2 || list[0].ID != "msg_2" || list[1].ID != "msg_1" {
		t.Fatalf("ListContactMessages order wrong (%d messages)", len(list))
	}
	if list[0].Delivered || !list[1].Delivered {
		t.Errorf("delivered flags = %v / %v, want false / true", list[0].Delivered, list[1].Delivered)
	}
	if list[0].Company != "Lise ApS" || list[0].Subject != "Webshop" || list[0].Phone != "+45 11223344" {
		t.Errorf("message fields = %+v", list[0])
	}
	if list[1].RemoteAddr != "10.0.0.1" {
		t.Errorf("RemoteAddr = %q, want 10.0.0.1", list[1].RemoteAddr)
	}
}

func profileIDs(ps []*api.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func projectIDs(ps []*api.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
