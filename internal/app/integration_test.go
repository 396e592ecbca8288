package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/infra/objectstore"
	"github.com/incidentiq/datagen/internal/infra/repos/requests"
	"github.com/incidentiq/datagen/internal/infra/repos/runs"
	"github.com/incidentiq/datagen/internal/infra/repos/targets"
	"github.com/incidentiq/datagen/internal/logging"
)

type memStore struct {
	keys []string
}

func (m *memStore) EnsureBucket(ctx context.Context, bucket string) error { return nil }

func (m *memStore) UploadFile(ctx context.Context, bucket, key, localPath, contentType string) (int64, error) {
	m.keys = append(m.keys, key)
	info, err := os.Stat(localPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func newTestService(t *testing.T, opts Options) (*RunService, *runs.SQLiteRepository, string) {
	t.Helper()
	dir := t.TempDir()

	reqDir := filepath.Join(dir, "requests")
	if err := os.MkdirAll(reqDir, 0o755); err != nil {
		t.Fatal(err)
	}
	yml := `name: customers
rows: 40
table_name: customers
columns:
  customer_id: id
  region: [North, South]
  age: int 18-65
  signup: date 2020-2021
  active: bool 60%
`
	if err := os.WriteFile(filepath.Join(reqDir, "customers.yaml"), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	runRepo := runs.NewSQLiteRepository(filepath.Join(dir, "runs.sqlite"))
	if err := runRepo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = runRepo.Close() })

	svc := NewRunService(
		requests.NewFileRepository(reqDir),
		targets.NewFileRepository(filepath.Join(dir, "targets")),
		runRepo,
		logging.Nop(),
		opts,
	)
	svc.SetClock(func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) })
	return svc, runRepo, dir
}

func TestExecute_ExportsAndRecordsRun(t *testing.T) {
	svc, _, dir := newTestService(t, Options{})
	out := filepath.Join(dir, "out", "customers.csv")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		t.Fatal(err)
	}

	run, ds, err := svc.Execute(context.Background(), &domain.RunRequest{RequestID: "customers", Output: out})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ds.RowCount != 40 || len(ds.Columns) != 5 {
		t.Fatalf("unexpected dataset shape %d x %d", ds.RowCount, len(ds.Columns))
	}
	if run.Status != domain.RunStatusSuccess || run.Seed != DefaultSeed {
		t.Fatalf("unexpected run %#v", run)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 41 || lines[0] != "customer_id,region,age,signup,active" {
		t.Fatalf("unexpected csv header or length: %q (%d lines)", lines[0], len(lines))
	}

	stored, err := svc.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	var stats domain.RunStats
	if err := json.Unmarshal(stored.Stats, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.RowsGenerated != 40 || stats.BytesWritten != int64(len(data)) {
		t.Fatalf("unexpected stats %#v", stats)
	}
}

func TestExecute_OutputDirConfinesPaths(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "output")
	svc, runRepo, _ := newTestService(t, Options{OutputDir: outDir})

	run, _, err := svc.Execute(context.Background(), &domain.RunRequest{RequestID: "customers", Output: "daily/customers.csv"})
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(outDir, "daily", "customers.csv")
	if run.Output != want {
		t.Fatalf("expected output under %s, got %q", outDir, run.Output)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file written: %v", err)
	}

	for _, bad := range []string{filepath.Join(root, "victim.csv"), "../victim.csv"} {
		_, _, err := svc.Execute(context.Background(), &domain.RunRequest{RequestID: "customers", Output: bad})
		var se *domain.SpecError
		if !errors.As(err, &se) || !errors.Is(err, ErrOutputOutsideDir) {
			t.Fatalf("expected SpecError for %q, got %v", bad, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "victim.csv")); !os.IsNotExist(err) {
		t.Fatal("expected nothing written outside the output directory")
	}

	list, err := runRepo.List(10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected only the confined run to be recorded, got %d", len(list))
	}
}

func TestExecute_OverridesAndSeedPrecedence(t *testing.T) {
	svc, _, dir := newTestService(t, Options{DefaultSeed: 7})
	seed := int64(11)
	out := filepath.Join(dir, "c.json")

	run, ds, err := svc.Execute(context.Background(), &domain.RunRequest{
		RequestID: "customers",
		Rows:      5,
		Seed:      &seed,
		Output:    out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowCount != 5 || run.Seed != 11 || run.TableName != "customers" {
		t.Fatalf("unexpected run %#v", run)
	}

	again, _, err := svc.Generate(&domain.GenerationRequest{
		Name:     "x",
		RowCount: 5,
		Columns:  domain.ColumnDefinitions{{Name: "age", Definition: "int 1-9"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.RowCount != 5 {
		t.Fatalf("unexpected preview rows %d", again.RowCount)
	}
	if _, used, _ := svc.Generate(&domain.GenerationRequest{
		Name:     "x",
		RowCount: 1,
		Columns:  domain.ColumnDefinitions{{Name: "age", Definition: "int 1-9"}},
	}, nil); used != 7 {
		t.Fatalf("expected service default seed 7, got %d", used)
	}
}

func TestExecute_LoadsIntoSQLite(t *testing.T) {
	svc, _, dir := newTestService(t, Options{BatchSize: 16})
	dbPath := filepath.Join(dir, "warehouse.db")

	run, _, err := svc.Execute(context.Background(), &domain.RunRequest{
		RequestID: "customers",
		Target:    &domain.TargetConfig{Name: "local", Kind: domain.TargetKindSQLite, DSN: dbPath},
		Mode:      domain.TableModeCreate,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if run.TargetKind != domain.TargetKindSQLite {
		t.Fatalf("unexpected target kind %q", run.TargetKind)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "customers"`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 40 {
		t.Fatalf("expected 40 loaded rows, got %d", n)
	}
}

func TestExecute_ExportFailureMarksRunFailed(t *testing.T) {
	svc, _, dir := newTestService(t, Options{})
	out := filepath.Join(dir, "missing", "dir", "customers.csv")

	run, ds, err := svc.Execute(context.Background(), &domain.RunRequest{RequestID: "customers", Output: out})
	var exportErr *domain.ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected ExportError, got %v", err)
	}
	if ds == nil {
		t.Fatal("expected the generated dataset to be returned")
	}
	stored, err := svc.GetRun(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.RunStatusFailed || stored.Error == "" {
		t.Fatalf("expected failed run, got %#v", stored)
	}
}

func TestExecute_InvalidRequestIsSpecError(t *testing.T) {
	svc, runRepo, _ := newTestService(t, Options{})
	_, _, err := svc.Execute(context.Background(), &domain.RunRequest{
		Request: &domain.GenerationRequest{Name: "bad", RowCount: 10},
		Output:  "x.csv",
	})
	var specErr *domain.SpecError
	if !errors.As(err, &specErr) {
		t.Fatalf("expected SpecError, got %v", err)
	}
	list, err := runRepo.List(10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("invalid requests should not create runs, got %d", len(list))
	}
}

func TestExecute_UnknownRequest(t *testing.T) {
	svc, _, _ := newTestService(t, Options{})
	_, _, err := svc.Execute(context.Background(), &domain.RunRequest{RequestID: "nope", Output: "x.csv"})
	if !errors.Is(err, requests.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExecute_PublishesArtifact(t *testing.T) {
	store := &memStore{}
	svc, _, dir := newTestService(t, Options{Publisher: objectstore.NewPublisherWithStore(store, "datasets")})
	out := filepath.Join(dir, "customers.parquet")

	run, _, err := svc.Execute(context.Background(), &domain.RunRequest{RequestID: "customers", Output: out, Publish: true})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(store.keys) != 1 || store.keys[0] != "customers/"+run.ID+"/customers.parquet" {
		t.Fatalf("unexpected uploaded keys %v", store.keys)
	}
	var stats domain.RunStats
	if err := json.Unmarshal(run.Stats, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.ArtifactURI != "s3://datasets/"+store.keys[0] {
		t.Fatalf("unexpected artifact uri %q", stats.ArtifactURI)
	}
}

func TestExecute_PublishWithoutStoreFails(t *testing.T) {
	svc, _, dir := newTestService(t, Options{})
	_, _, err := svc.Execute(context.Background(), &domain.RunRequest{
		RequestID: "customers",
		Output:    filepath.Join(dir, "c.csv"),
		Publish:   true,
	})
	var exportErr *domain.ExportError
	if !errors.As(err, &exportErr) || exportErr.Op != "publish" {
		t.Fatalf("expected publish ExportError, got %v", err)
	}
}

func TestCheckTarget_SQLite(t *testing.T) {
	tgt := &domain.TargetConfig{ID: "local", Name: "local", Kind: domain.TargetKindSQLite, DSN: filepath.Join(t.TempDir(), "check.db")}
	check, err := CheckTarget(tgt)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !check.OK || check.ServerVer == "" {
		t.Fatalf("unexpected check %#v", check)
	}
	if !check.Capabilities.CanCreate || !check.Capabilities.CanInsert || !check.Capabilities.CanTruncate {
		t.Fatalf("expected full capabilities, got %#v", check.Capabilities)
	}
}

func TestCheckTarget_RejectsUnsupportedKind(t *testing.T) {
	check, err := CheckTarget(&domain.TargetConfig{Name: "es", Kind: "elasticsearch", DSN: "http://localhost:9200"})
	if err == nil || check.OK {
		t.Fatalf("expected failure, got %#v", check)
	}
}
