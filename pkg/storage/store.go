package storage

import (
	"context"

	"github.com/nordweb/portal/pkg/api"
)

// ProfileStore persists accounts. Email lookups are case-insensitive.
type ProfileStore interface {
	CreateProfile(ctx context.Context, cred *api.Credentials) error
	GetProfile(ctx context.Context, id string) (*api.Profile, error)
	GetCredentials(ctx context.Context, id string) (*api.Credentials, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*api.Credentials, error)
	UpdateProfile(ctx context.Context, p *api.Profile) error
	SetPasswordHash(ctx context.Context, id string, hash []byte) error

	// ListProfiles returns every profile, oldest first.
	ListProfiles(ctx context.Context) ([]*api.Profile, error)
}

// ProjectStore persists projects and their child records. Project reads
// and writes honor the client scope of the context; child records are
// addressed through their project and are only reached after the caller
// has resolved the project.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *api.Project) error
	GetProject(ctx context.Context, id string) (*api.Project, error)
	UpdateProject(ctx context.Context, p *api.Project) error

	// DeleteProject removes the project together with its phases,
	// updates, metrics and document rows.
	DeleteProject(ctx context.Context, id string) error

	// ListProjects returns the projects in scope, newest first.
	ListProjects(ctx context.Context) ([]*api.Project, error)

	CreatePhase(ctx context.Context, ph *api.Phase) error
	GetPhase(ctx context.Context, projectID, id string) (*api.Phase, error)
	UpdatePhase(ctx context.Context, ph *api.Phase) error
	DeletePhase(ctx context.Context, projectID, id string) error

	// ListPhases returns the phases of a project ordered by position.
	ListPhases(ctx context.Context, projectID string) ([]*api.Phase, error)

	CreateUpdate(ctx context.Context, u *api.Update) error

	// ListUpdates returns the updates of the given projects, newest first.
	ListUpdates(ctx context.Context, projectIDs ...string) ([]*api.Update, error)

	CreateMetric(ctx context.Context, m *api.Metric) error

	// ListMetrics returns the readings of a project, newest first.
	ListMetrics(ctx context.Context, projectID string) ([]*api.Metric, error)

	CreateDocument(ctx context.Context, d *api.Document) error
	GetDocument(ctx context.Context, projectID, id string) (*api.Document, error)
	DeleteDocument(ctx context.Context, projectID, id string) error

	// ListDocuments returns the documents of a project, newest first.
	ListDocuments(ctx context.Context, projectID string) ([]*api.Document, error)
}

// ContactStore persists contact form submissions.
type ContactStore interface {
	CreateContactMessage(ctx context.Context, m *api.ContactMessage) error
	MarkContactDelivered(ctx context.Context, id string) error

	// ListContactMessages returns every message, newest first.
	ListContactMessages(ctx context.Context) ([]*api.ContactMessage, error)
}

// Store is the full persistence surface of the portal.
type Store interface {
	ProfileStore
	ProjectStore
	ContactStore

	HealthCheck(ctx context.Context) error
	Close() error
}
