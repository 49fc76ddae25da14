package portal

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordweb/portal/pkg/api"
)

func TestPostUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	u, err := f.svc.PostUpdate(ctx, f.admin, p.ID, UpdateInput{Title: "  Design approved  ", Kind: api.UpdateMilestone})
	require.NoError(t, err)
	assert.Equal(t, "Design approved", u.Title)
	assert.Equal(t, f.admin.Subject, u.AuthorID)
	assert.Equal(t, api.UpdateMilestone, u.Kind)

	note, err := f.svc.PostUpdate(ctx, f.admin, p.ID, UpdateInput{Title: "Copy received"})
	require.NoError(t, err)
	assert.Equal(t, api.UpdateNote, note.Kind, "kind defaults to note")

	_, err = f.svc.PostUpdate(ctx, f.alice, p.ID, UpdateInput{Title: "Customer note"})
	assert.Equal(t, api.ErrorTypeForbidden, errType(t, err))

	_, err = f.svc.PostUpdate(ctx, f.admin, p.ID, UpdateInput{Title: "x", Kind: "gossip"})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))

	list, err := f.svc.ListUpdates(ctx, f.alice, p.ID, api.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list.Data, 2)
	assert.Equal(t, note.ID, list.Data[0].ID, "newest first")

	_, err = f.svc.ListUpdates(ctx, f.bob, p.ID, api.ListOptions{})
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
}

func TestRecordMetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m, err := f.svc.RecordMetric(ctx, f.admin, p.ID, MetricInput{Name: "visitors", Value: 1200, RecordedAt: &at})
	require.NoError(t, err)
	assert.Equal(t, at, m.RecordedAt)

	_, err = f.svc.RecordMetric(ctx, f.admin, p.ID, MetricInput{Name: "visitors", Value: math.NaN()})
	assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))

	_, err = f.svc.RecordMetric(ctx, f.alice, p.ID, MetricInput{Name: "visitors", Value: 1})
	assert.Equal(t, api.ErrorTypeForbidden, errType(t, err))

	metrics, err := f.svc.ListMetrics(ctx, f.alice, p.ID)
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Equal(t, 1200.0, metrics[0].Value)
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	t.Run("client uploads to own project", func(t *testing.T) {
		d, err := f.svc.UploadDocument(ctx, f.alice, p.ID, "logo.png", "", strings.NewReader("png bytes"))
		require.NoError(t, err)
		assert.Equal(t, "image/png", d.ContentType)
		assert.Equal(t, int64(len("png bytes")), d.Size)
		assert.Equal(t, f.alice.Subject, d.UploaderID)
	})

	t.Run("unknown extension", func(t *testing.T) {
		d, err := f.svc.UploadDocument(ctx, f.admin, p.ID, "notes", "", strings.NewReader("plain"))
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", d.ContentType)
	})

	t.Run("foreign project looks missing", func(t *testing.T) {
		_, err := f.svc.UploadDocument(ctx, f.bob, p.ID, "x.txt", "", strings.NewReader("data"))
		assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
	})

	t.Run("too large", func(t *testing.T) {
		before := f.blobs.Len()
		_, err := f.svc.UploadDocument(ctx, f.admin, p.ID, "big.bin", "", strings.NewReader(strings.Repeat("a", 65)))
		assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))
		assert.Equal(t, before, f.blobs.Len(), "partial blob removed")
	})

	t.Run("exactly at limit", func(t *testing.T) {
		_, err := f.svc.UploadDocument(ctx, f.admin, p.ID, "edge.bin", "", strings.NewReader(strings.Repeat("a", 64)))
		assert.NoError(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := f.svc.UploadDocument(ctx, f.admin, p.ID, "empty.txt", "", strings.NewReader(""))
		assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))
	})

	t.Run("path in name", func(t *testing.T) {
		_, err := f.svc.UploadDocument(ctx, f.admin, p.ID, "../etc/passwd", "", strings.NewReader("root"))
		assert.Equal(t, api.ErrorTypeInvalidRequest, errType(t, err))
	})

	docs, err := f.svc.ListDocuments(ctx, f.alice, p.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
	assert.Equal(t, 3, f.blobs.Len())
}

func TestOpenAndDeleteDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, f.alice, "Webshop")

	d, err := f.svc.UploadDocument(ctx, f.admin, p.ID, "contract.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)

	meta, rc, err := f.svc.OpenDocument(ctx, f.alice, p.ID, d.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))
	assert.Equal(t, "contract.pdf", meta.Name)

	_, _, err = f.svc.OpenDocument(ctx, f.bob, p.ID, d.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))

	assert.Equal(t, api.ErrorTypeForbidden, errType(t, f.svc.DeleteDocument(ctx, f.alice, p.ID, d.ID)))
	require.NoError(t, f.svc.DeleteDocument(ctx, f.admin, p.ID, d.ID))
	assert.Equal(t, 0, f.blobs.Len())

	_, _, err = f.svc.OpenDocument(ctx, f.alice, p.ID, d.ID)
	assert.Equal(t, api.ErrorTypeNotFound, errType(t, err))
}
