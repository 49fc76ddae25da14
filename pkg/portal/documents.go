package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/blob"
	"github.com/nordweb/portal/pkg/observability"
)

// ListDocuments returns the documents of a visible project, newest first.
func (s *Service) ListDocuments(ctx context.Context, id *auth.Identity, projectID string) ([]*api.Document, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocuments(ctx, p.ID)
	if err != nil {
		return nil, notFound(err, "documents")
	}
	return docs, nil
}

// UploadDocument stores a file on a project. Admins and owners may upload
// to any project, customers to their own.
func (s *Service) UploadDocument(ctx context.Context, id *auth.Identity, projectID, name, contentType string, r io.Reader) (*api.Document, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !id.IsAdmin() && p.ClientID != id.Subject {
		return nil, api.NewForbiddenError("insufficient role")
	}

	name = strings.TrimSpace(name)
	if apiErr := api.ValidateDocumentName(name); apiErr != nil {
		return nil, apiErr
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	d := &api.Document{
		ID:          api.NewID(api.PrefixDocument),
		ProjectID:   p.ID,
		UploaderID:  id.Subject,
		Name:        name,
		ContentType: contentType,
		CreatedAt:   s.now().UTC(),
	}
	d.StorageKey = blob.DocumentKey(p.ID, d.ID, name)

	limit := s.cfg.MaxDocumentBytes
	n, err := s.blobs.Put(ctx, d.StorageKey, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("storing document content: %w", err)
	}
	if n > limit {
		s.removeBlob(ctx, d.StorageKey)
		return nil, api.NewInvalidRequestError("file", fmt.Sprintf("file exceeds the %d byte limit", limit))
	}
	if n == 0 {
		s.removeBlob(ctx, d.StorageKey)
		return nil, api.NewInvalidRequestError("file", "file is empty")
	}
	d.Size = n

	if err := s.store.CreateDocument(ctx, d); err != nil {
		s.removeBlob(ctx, d.StorageKey)
		return nil, notFound(err, "document")
	}

	observability.DocumentBytesTotal.Add(float64(n))
	slog.Info("document uploaded", "project_id", p.ID, "document_id", d.ID, "size", n, "by", id.Subject)
	return d, nil
}

// OpenDocument returns the metadata and content of a document on a visible
// project. The caller closes the reader.
func (s *Service) OpenDocument(ctx context.Context, id *auth.Identity, projectID, docID string) (*api.Document, io.ReadCloser, error) {
	ctx, err := scope(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	d, err := s.store.GetDocument(ctx, p.ID, docID)
	if err != nil {
		return nil, nil, notFound(err, "document")
	}
	rc, err := s.blobs.Open(ctx, d.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			slog.Error("document content missing", "document_id", d.ID, "key", d.StorageKey)
			return nil, nil, api.NewNotFoundError("document content not found")
		}
		return nil, nil, fmt.Errorf("opening document content: %w", err)
	}
	return d, rc, nil
}

// DeleteDocument removes the document row and its content. Admin and owner
// only.
func (s *Service) DeleteDocument(ctx context.Context, id *auth.Identity, projectID, docID string) error {
	ctx, err := authorize(ctx, id, api.RoleAdmin)
	if err != nil {
		return err
	}
	p, err := s.project(ctx, projectID)
	if err != nil {
		return err
	}
	d, err := s.store.GetDocument(ctx, p.ID, docID)
	if err != nil {
		return notFound(err, "document")
	}
	if err := s.store.DeleteDocument(ctx, p.ID, d.ID); err != nil {
		return notFound(err, "document")
	}
	s.removeBlob(ctx, d.StorageKey)
	return nil
}

func (s *Service) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		slog.Warn("removing document blob", "key", key, "error", err)
	}
}
