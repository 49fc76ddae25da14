package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nordweb/portal/pkg/api"
)

const projectColumns = `id, client_id, name, description, status, website, start_date, target_date, created_at, updated_at`

func scanProject(row pgx.Row) (*api.Project, error) {
	var p api.Project
	var status string
	err := row.Scan(
		&p.ID, &p.ClientID, &p.Name, &p.Description, &status, &p.Website,
		&p.StartDate, &p.TargetDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = api.ProjectStatus(status)
	p.StartDate = utcPtr(p.StartDate)
	p.TargetDate = utcPtr(p.TargetDate)
	p.CreatedAt = utc(p.CreatedAt)
	p.UpdatedAt = utc(p.UpdatedAt)
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *api.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.ClientID, p.Name, p.Description, string(p.Status), p.Website,
		p.StartDate, p.TargetDate, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapError(err, "inserting project")
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*api.Project, error) {
	query, args := scopeClause(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, []any{id})
	p, err := scanProject(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "querying project")
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *api.Project) error {
	query, args := scopeClause(ctx, `
		UPDATE projects
		SET client_id = $2, name = $3, description = $4, status = $5, website = $6,
		    start_date = $7, target_date = $8, updated_at = $9
		WHERE id = $1`,
		[]any{p.ID, p.ClientID, p.Name, p.Description, string(p.Status), p.Website,
			p.StartDate, p.TargetDate, p.UpdatedAt})
	return s.execOne(ctx, "updating project", query, args...)
}

// DeleteProject relies on ON DELETE CASCADE for the child tables.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	query, args := scopeClause(ctx, `DELETE FROM projects WHERE id = $1`, []any{id})
	return s.execOne(ctx, "deleting project", query, args...)
}

func (s *Store) ListProjects(ctx context.Context) ([]*api.Project, error) {
	query, args := scopeClause(ctx, `SELECT `+projectColumns+` FROM projects WHERE TRUE`, nil)
	rows, err := s.pool.Query(ctx, query+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, mapError(err, "listing projects")
	}
	return collect(rows, "project", func(r pgx.Rows) (*api.Project, error) { return scanProject(r) })
}

// ---------------------------------------------------------------------------
// Phases
// ---------------------------------------------------------------------------

const phaseColumns = `id, project_id, name, description, position, status, percent, started_at, completed_at, created_at, updated_at`

func scanPhase(row pgx.Row) (*api.Phase, error) {
	var ph api.Phase
	var status string
	err := row.Scan(
		&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.Position, &status, &ph.Percent,
		&ph.StartedAt, &ph.CompletedAt, &ph.CreatedAt, &ph.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ph.Status = api.PhaseStatus(status)
	ph.StartedAt = utcPtr(ph.StartedAt)
	ph.CompletedAt = utcPtr(ph.CompletedAt)
	ph.CreatedAt = utc(ph.CreatedAt)
	ph.UpdatedAt = utc(ph.UpdatedAt)
	return &ph, nil
}

func (s *Store) CreatePhase(ctx context.Context, ph *api.Phase) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO phases (`+phaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.Position, string(ph.Status), ph.Percent,
		ph.StartedAt, ph.CompletedAt, ph.CreatedAt, ph.UpdatedAt)
	if err != nil {
		return mapError(err, "inserting phase")
	}
	return nil
}

func (s *Store) GetPhase(ctx context.Context, projectID, id string) (*api.Phase, error) {
	ph, err := scanPhase(s.pool.QueryRow(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE id = $1 AND project_id = $2`, id, projectID))
	if err != nil {
		return nil, mapError(err, "querying phase")
	}
	return ph, nil
}

func (s *Store) UpdatePhase(ctx context.Context, ph *api.Phase) error {
	return s.execOne(ctx, "updating phase", `
		UPDATE phases
		SET name = $3, description = $4, position = $5, status = $6, percent = $7,
		    started_at = $8, completed_at = $9, updated_at = $10
		WHERE id = $1 AND project_id = $2
	`, ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.Position, string(ph.Status), ph.Percent,
		ph.StartedAt, ph.CompletedAt, ph.UpdatedAt)
}

func (s *Store) DeletePhase(ctx context.Context, projectID, id string) error {
	return s.execOne(ctx, "deleting phase",
		`DELETE FROM phases WHERE id = $1 AND project_id = $2`, id, projectID)
}

func (s *Store) ListPhases(ctx context.Context, projectID string) ([]*api.Phase, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+phaseColumns+` FROM phases
		WHERE project_id = $1
		ORDER BY position, created_at, id
	`, projectID)
	if err != nil {
		return nil, mapError(err, "listing phases")
	}
	return collect(rows, "phase", func(r pgx.Rows) (*api.Phase, error) { return scanPhase(r) })
}

// ---------------------------------------------------------------------------
// Updates, metrics, documents
// ---------------------------------------------------------------------------

func (s *Store) CreateUpdate(ctx context.Context, u *api.Update) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO updates (id, project_id, author_id, title, body, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.ProjectID, u.AuthorID, u.Title, u.Body, string(u.Kind), u.CreatedAt)
	if err != nil {
		return mapError(err, "inserting update")
	}
	return nil
}

func (s *Store) ListUpdates(ctx context.Context, projectIDs ...string) ([]*api.Update, error) {
	if len(projectIDs) == 0 {
		return []*api.Update{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, author_id, title, body, kind, created_at
		FROM updates
		WHERE project_id = ANY($1)
		ORDER BY created_at DESC, id DESC
	`, projectIDs)
	if err != nil {
		return nil, mapError(err, "listing updates")
	}
	return collect(rows, "update", func(r pgx.Rows) (*api.Update, error) {
		var u api.Update
		var kind string
		if err := r.Scan(&u.ID, &u.ProjectID, &u.AuthorID, &u.Title, &u.Body, &kind, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Kind = api.UpdateKind(kind)
		u.CreatedAt = utc(u.CreatedAt)
		return &u, nil
	})
}

func (s *Store) CreateMetric(ctx context.Context, m *api.Metric) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO metrics (id, project_id, name, value, unit, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.ProjectID, m.Name, m.Value, m.Unit, m.RecordedAt)
	if err != nil {
		return mapError(err, "inserting metric")
	}
	return nil
}

func (s *Store) ListMetrics(ctx context.Context, projectID string) ([]*api.Metric, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, name, value, unit, recorded_at
		FROM metrics
		WHERE project_id = $1
		ORDER BY recorded_at DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, mapError(err, "listing metrics")
	}
	return collect(rows, "metric", func(r pgx.Rows) (*api.Metric, error) {
		var m api.Metric
		if err := r.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Value, &m.Unit, &m.RecordedAt); err != nil {
			return nil, err
		}
		m.RecordedAt = utc(m.RecordedAt)
		return &m, nil
	})
}

const documentColumns = `id, project_id, uploader_id, name, content_type, size, storage_key, created_at`

func scanDocument(row pgx.Row) (*api.Document, error) {
	var d api.Document
	err := row.Scan(&d.ID, &d.ProjectID, &d.UploaderID, &d.Name, &d.ContentType, &d.Size, &d.StorageKey, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.CreatedAt = utc(d.CreatedAt)
	return &d, nil
}

func (s *Store) CreateDocument(ctx context.Context, d *api.Document) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID, d.ProjectID, d.UploaderID, d.Name, d.ContentType, d.Size, d.StorageKey, d.CreatedAt)
	if err != nil {
		return mapError(err, "inserting document")
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, projectID, id string) (*api.Document, error) {
	d, err := scanDocument(s.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND project_id = $2`, id, projectID))
	if err != nil {
		return nil, mapError(err, "querying document")
	}
	return d, nil
}

func (s *Store) DeleteDocument(ctx context.Context, projectID, id string) error {
	return s.execOne(ctx, "deleting document",
		`DELETE FROM documents WHERE id = $1 AND project_id = $2`, id, projectID)
}

func (s *Store) ListDocuments(ctx context.Context, projectID string) ([]*api.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, mapError(err, "listing documents")
	}
	return collect(rows, "document", func(r pgx.Rows) (*api.Document, error) { return scanDocument(r) })
}
