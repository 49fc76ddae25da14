package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nordweb/portal/pkg/blob"
)

func TestPutOpenDelete(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	key := blob.DocumentKey("prj_1", "doc_1", "brief.txt")

	n, err := s.Put(ctx, key, strings.NewReader("hej verden"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len("hej verden")) {
		t.Errorf("Put size = %d", n)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "hej verden" {
		t.Errorf("content = %q", data)
	}

	// Overwrite replaces the content.
	if _, err := s.Put(ctx, key, strings.NewReader("v2")); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	rc, _ = s.Open(ctx, key)
	data, _ = io.ReadAll(rc)
	rc.Close()
	if string(data) != "v2" {
		t.Errorf("content after overwrite = %q", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, key); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("Open after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}

	if _, err := os.Stat(filepath.Join(root, "projects")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("empty directories were not pruned: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root removed: %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, key := range []string{"../escape", "/abs/path", "a/../../b", ""} {
		if _, err := s.Put(ctx, key, strings.NewReader("x")); !errors.Is(err, blob.ErrInvalidKey) {
			t.Errorf("Put(%q) = %v, want ErrInvalidKey", key, err)
		}
		if _, err := s.Open(ctx, key); !errors.Is(err, blob.ErrInvalidKey) {
			t.Errorf("Open(%q) = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestPutLeavesNoTempFileOnFailure(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Put(ctx, "projects/prj_1/doc_1/a.bin", strings.NewReader("data")); err == nil {
		t.Fatal("expected error for cancelled context")
	}

	entries, err := os.ReadDir(filepath.Join(root, "projects", "prj_1", "doc_1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files after failed Put: %d", len(entries))
	}
}
