package sqlite

import (
	"context"
	"database/sql"

	"github.com/nordweb/portal/pkg/api"
)

const projectColumns = `id, client_id, name, description, status, website, start_date, target_date, created_at, updated_at`

func scanProject(row scanner) (*api.Project, error) {
	var p api.Project
	var status, created, updated string
	var start, target sql.NullString
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Description, &status, &p.Website,
		&start, &target, &created, &updated)
	if err != nil {
		return nil, err
	}
	p.Status = api.ProjectStatus(status)
	if p.StartDate, err = nullToTimePtr(start); err != nil {
		return nil, err
	}
	if p.TargetDate, err = nullToTimePtr(target); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *api.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.ClientID, p.Name, p.Description, string(p.Status), p.Website,
		timePtrToNull(p.StartDate), timePtrToNull(p.TargetDate), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return mapError(err, "inserting project")
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*api.Project, error) {
	query, args := scopeClause(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, []any{id})
	p, err := scanProject(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "querying project")
	}
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *api.Project) error {
	query, args := scopeClause(ctx, `
		UPDATE projects
		SET client_id = ?, name = ?, description = ?, status = ?, website = ?,
		    start_date = ?, target_date = ?, updated_at = ?
		WHERE id = ?`,
		[]any{p.ClientID, p.Name, p.Description, string(p.Status), p.Website,
			timePtrToNull(p.StartDate), timePtrToNull(p.TargetDate), formatTime(p.UpdatedAt), p.ID})
	return s.execOne(ctx, "updating project", query, args...)
}

// DeleteProject relies on ON DELETE CASCADE for the child tables.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	query, args := scopeClause(ctx, `DELETE FROM projects WHERE id = ?`, []any{id})
	return s.execOne(ctx, "deleting project", query, args...)
}

func (s *Store) ListProjects(ctx context.Context) ([]*api.Project, error) {
	query, args := scopeClause(ctx, `SELECT `+projectColumns+` FROM projects WHERE 1 = 1`, nil)
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, mapError(err, "listing projects")
	}
	return collect(rows, "project", scanProject)
}

// ---------------------------------------------------------------------------
// Phases
// ---------------------------------------------------------------------------

const phaseColumns = `id, project_id, name, description, position, status, percent, started_at, completed_at, created_at, updated_at`

func scanPhase(row scanner) (*api.Phase, error) {
	var ph api.Phase
	var status, created, updated string
	var started, completed sql.NullString
	err := row.Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Description, &ph.Position, &status, &ph.Percent,
		&started, &completed, &created, &updated)
	if err != nil {
		return nil, err
	}
	ph.Status = api.PhaseStatus(status)
	if ph.StartedAt, err = nullToTimePtr(started); err != nil {
		return nil, err
	}
	if ph.CompletedAt, err = nullToTimePtr(completed); err != nil {
		return nil, err
	}
	if ph.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if ph.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &ph, nil
}

func (s *Store) CreatePhase(ctx context.Context, ph *api.Phase) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO phases (`+phaseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ph.ID, ph.ProjectID, ph.Name, ph.Description, ph.Position, string(ph.Status), ph.Percent,
		timePtrToNull(ph.StartedAt), timePtrToNull(ph.CompletedAt), formatTime(ph.CreatedAt), formatTime(ph.UpdatedAt))
	if err != nil {
		return mapError(err, "inserting phase")
	}
	return nil
}

func (s *Store) GetPhase(ctx context.Context, projectID, id string) (*api.Phase, error) {
	ph, err := scanPhase(s.db.QueryRowContext(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE id = ? AND project_id = ?`, id, projectID))
	if err != nil {
		return nil, mapError(err, "querying phase")
	}
	return ph, nil
}

func (s *Store) UpdatePhase(ctx context.Context, ph *api.Phase) error {
	return s.execOne(ctx, "updating phase", `
		UPDATE phases
		SET name = ?, description = ?, position = ?, status = ?, percent = ?,
		    started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND project_id = ?
	`, ph.Name, ph.Description, ph.Position, string(ph.Status), ph.Percent,
		timePtrToNull(ph.StartedAt), timePtrToNull(ph.CompletedAt), formatTime(ph.UpdatedAt),
		ph.ID, ph.ProjectID)
}

func (s *Store) DeletePhase(ctx context.Context, projectID, id string) error {
	return s.execOne(ctx, "deleting phase",
		`DELETE FROM phases WHERE id = ? AND project_id = ?`, id, projectID)
}

func (s *Store) ListPhases(ctx context.Context, projectID string) ([]*api.Phase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+phaseColumns+` FROM phases
		WHERE project_id = ?
		ORDER BY position, created_at, id
	`, projectID)
	if err != nil {
		return nil, mapError(err, "listing phases")
	}
	return collect(rows, "phase", scanPhase)
}

// ---------------------------------------------------------------------------
// Updates, metrics, documents
// ---------------------------------------------------------------------------

func (s *Store) CreateUpdate(ctx context.Context, u *api.Update) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO updates (id, project_id, author_id, title, body, kind, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.ProjectID, u.AuthorID, u.Title, u.Body, string(u.Kind), formatTime(u.CreatedAt))
	if err != nil {
		return mapError(err, "inserting update")
	}
	return nil
}

func (s *Store) ListUpdates(ctx context.Context, projectIDs ...string) ([]*api.Update, error) {
	if len(projectIDs) == 0 {
		return []*api.Update{}, nil
	}
	args := make([]any, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, author_id, title, body, kind, created_at
		FROM updates
		WHERE project_id IN (`+placeholders(len(args))+`)
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, mapError(err, "listing updates")
	}
	return collect(rows, "update", func(r scanner) (*api.Update, error) {
		var u api.Update
		var kind, created string
		if err := r.Scan(&u.ID, &u.ProjectID, &u.AuthorID, &u.Title, &u.Body, &kind, &created); err != nil {
			return nil, err
		}
		u.Kind = api.UpdateKind(kind)
		var err error
		u.CreatedAt, err = parseTime(created)
		return &u, err
	})
}

func (s *Store) CreateMetric(ctx context.Context, m *api.Metric) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics (id, project_id, name, value, unit, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.ProjectID, m.Name, m.Value, m.Unit, formatTime(m.RecordedAt))
	if err != nil {
		return mapError(err, "inserting metric")
	}
	return nil
}

func (s *Store) ListMetrics(ctx context.Context, projectID string) ([]*api.Metric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, name, value, unit, recorded_at
		FROM metrics
		WHERE project_id = ?
		ORDER BY recorded_at DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, mapError(err, "listing metrics")
	}
	return collect(rows, "metric", func(r scanner) (*api.Metric, error) {
		var m api.Metric
		var recorded string
		if err := r.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Value, &m.Unit, &recorded); err != nil {
			return nil, err
		}
		var err error
		m.RecordedAt, err = parseTime(recorded)
		return &m, err
	})
}

const documentColumns = `id, project_id, uploader_id, name, content_type, size, storage_key, created_at`

func scanDocument(row scanner) (*api.Document, error) {
	var d api.Document
	var created string
	err := row.Scan(&d.ID, &d.ProjectID, &d.UploaderID, &d.Name, &d.ContentType, &d.Size, &d.StorageKey, &created)
	if err != nil {
		return nil, err
	}
	d.CreatedAt, err = parseTime(created)
	return &d, err
}

func (s *Store) CreateDocument(ctx context.Context, d *api.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.ProjectID, d.UploaderID, d.Name, d.ContentType, d.Size, d.StorageKey, formatTime(d.CreatedAt))
	if err != nil {
		return mapError(err, "inserting document")
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, projectID, id string) (*api.Document, error) {
	d, err := scanDocument(s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND project_id = ?`, id, projectID))
	if err != nil {
		return nil, mapError(err, "querying document")
	}
	return d, nil
}

func (s *Store) DeleteDocument(ctx context.Context, projectID, id string) error {
	return s.execOne(ctx, "deleting document",
		`DELETE FROM documents WHERE id = ? AND project_id = ?`, id, projectID)
}

func (s *Store) ListDocuments(ctx context.Context, projectID string) ([]*api.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
	`, projectID)
	if err != nil {
		return nil, mapError(err, "listing documents")
	}
	return collect(rows, "document", scanDocument)
}
