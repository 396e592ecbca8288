package runs

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
)

func TestInitCreatesParentDirectory(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "deeper", "runs.db")
	repo := NewSQLiteRepository(dbPath)

	if err := repo.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if repo.DB() == nil {
		t.Fatal("expected db handle to be initialized")
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
}

func TestCreateUpdateGetList(t *testing.T) {
	repo := NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.db"))
	if err := repo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	run := &domain.Run{
		RequestID:   "customers",
		RequestName: "customers",
		ConfigHash:  "abc",
		Seed:        42,
		Rows:        100,
		Columns:     4,
		Output:      "out/customers.sql",
		Status:      domain.RunStatusRunning,
		StartedAt:   started,
	}
	if err := repo.Create(run); err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run id")
	}

	done := started.Add(2 * time.Second)
	run.Status = domain.RunStatusSuccess
	run.CompletedAt = &done
	run.Stats = json.RawMessage(`{"rows_generated":100}`)
	if err := repo.Update(run); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.RunStatusSuccess || got.Output != "out/customers.sql" || got.Seed != 42 {
		t.Fatalf("unexpected run %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Fatalf("unexpected completed_at %v", got.CompletedAt)
	}
	if string(got.Stats) != `{"rows_generated":100}` {
		t.Fatalf("unexpected stats %s", got.Stats)
	}

	second := &domain.Run{RequestID: "r2", RequestName: "r2", ConfigHash: "def", Status: domain.RunStatusFailed, StartedAt: started.Add(time.Hour), Error: "boom"}
	if err := repo.Create(second); err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected newest first, got %v", all)
	}
	failed, err := repo.List(10, string(domain.RunStatusFailed))
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Error != "boom" {
		t.Fatalf("unexpected failed runs %v", failed)
	}

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Update(&domain.Run{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}
