package memory

import (
	"context"
	"testing"

	"github.com/nordweb/portal/pkg/storage"
	"github.com/nordweb/portal/pkg/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}

func TestMemory_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := storagetest.MakeProject("prj_1", "usr_c", 0)
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.Name = "mutated after create"

	got, _ := s.GetProject(ctx, "prj_1")
	if got.Name == "mutated after create" {
		t.Fatal("store aliases the caller's project")
	}
	got.Name = "mutated after get"

	again, _ := s.GetProject(ctx, "prj_1")
	if again.Name == "mutated after get" {
		t.Fatal("store hands out its internal project")
	}
}

func TestMemory_HealthAndClose(t *testing.T) {
	s := New()
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
