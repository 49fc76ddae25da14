package postgres

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/storage"
	"github.com/nordweb/portal/pkg/storage/storagetest"
)

func init() {
	// Fall back to the podman socket when no DOCKER_HOST is set.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
}

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// testDSN starts one PostgreSQL container for the package and returns its
// connection string. Tests are skipped if no container runtime is available.
func testDSN(t *testing.T) string {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		ctx := context.Background()
		container, err := pgmodule.Run(ctx,
			"postgres:16-alpine",
			pgmodule.WithDatabase("nordweb_test"),
			pgmodule.WithUsername("test"),
			pgmodule.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerDSN, containerErr = container.ConnectionString(ctx, "sslmode=disable")
	})

	if containerErr != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", containerErr)
	}
	return containerDSN
}

// setupTestDB returns a migrated store with every table emptied.
func setupTestDB(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := New(ctx, Config{
		DSN:            testDSN(t),
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	_, err = store.pool.Exec(ctx, `
		TRUNCATE contact_messages, documents, metrics, updates, phases, projects, profiles
	`)
	if err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
	return store
}

func TestPostgresStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return setupTestDB(t)
	})
}

func TestPostgres_MigrateIsIdempotent(t *testing.T) {
	dsn := testDSN(t)
	ctx := context.Background()

	if err := Migrate(ctx, dsn); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(ctx, dsn); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestPostgres_ProjectRequiresExistingClient(t *testing.T) {
	store := setupTestDB(t)

	err := store.CreateProject(context.Background(), storagetest.MakeProject("prj_1", "usr_ghost", 0))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("CreateProject(unknown client) = %v, want ErrNotFound", err)
	}
}

func TestPostgres_RejectsOutOfRangePercent(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	if err := store.CreateProfile(ctx, storagetest.MakeProfile("usr_c", "c@example.dk", api.RoleUser, 0)); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateProject(ctx, storagetest.MakeProject("prj_1", "usr_c", 0)); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	err := store.CreatePhase(ctx, &api.Phase{
		ID: "phs_1", ProjectID: "prj_1", Name: "x", Status: api.PhaseInProgress,
		Percent: 150, CreatedAt: now, UpdatedAt: now,
	})
	if err == nil {
		t.Fatal("expected check constraint violation")
	}
	if errors.Is(err, storage.ErrConflict) || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("check violation mapped to sentinel: %v", err)
	}
}

func TestPostgres_HealthCheck(t *testing.T) {
	store := setupTestDB(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() = %v", err)
	}
}

func TestConfigDefaultsPool(t *testing.T) {
	var cfg Config
	cfg.defaults()

	if cfg.MaxConns != 25 || cfg.MinConns != 5 || cfg.MaxConnLifetime != 5*time.Minute {
		t.Errorf("defaults = %+v", cfg)
	}
}
