package requests

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const customersYAML = `name: customers
rows: 100
columns:
  customer_id: id
  region: [North, South, East, West]
  age: int 18-65
  signup: date 2020-2024
`

func TestGetByPath_RejectsPathTraversal(t *testing.T) {
	base := t.TempDir()
	repo := NewFileRepository(base)

	if err := os.WriteFile(filepath.Join(base, "ok.yaml"), []byte(customersYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByPath("ok.yaml"); err != nil {
		t.Fatalf("expected request load inside base dir, got %v", err)
	}

	outsideFile := filepath.Join(t.TempDir(), "outside.yaml")
	if err := os.WriteFile(outsideFile, []byte(customersYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetByPath(outsideFile); err == nil {
		t.Fatal("expected traversal rejection for outside absolute path")
	}
	if _, err := repo.GetByPath("../outside.yaml"); err == nil {
		t.Fatal("expected traversal rejection for relative path escape")
	}
}

func TestLoadFile_YAMLKeepsColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.yaml")
	if err := os.WriteFile(path, []byte(customersYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	req, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if req.ID != "customers" || req.RowCount != 100 {
		t.Fatalf("unexpected request %+v", req)
	}
	if got := req.Columns.Names(); !reflect.DeepEqual(got, []string{"customer_id", "region", "age", "signup"}) {
		t.Fatalf("unexpected column order %v", got)
	}
	if _, ok := req.Columns[1].Definition.([]any); !ok {
		t.Fatalf("expected region to be a list, got %T", req.Columns[1].Definition)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensors.json")
	doc := `{"id":"sensors","rows":10,"columns":{"volts":"voltage","level":[1,2,3],"at":"timestamp 2024-01-01 2024-02-01"}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	req, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := req.Columns.Names(); !reflect.DeepEqual(got, []string{"volts", "level", "at"}) {
		t.Fatalf("unexpected column order %v", got)
	}
}

func TestListAndGet(t *testing.T) {
	base := t.TempDir()
	repo := NewFileRepository(base)
	if err := os.WriteFile(filepath.Join(base, "customers.yaml"), []byte(customersYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "broken.yaml"), []byte("rows: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one valid request, got %d", len(list))
	}
	if _, err := repo.Get("customers"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	empty := NewFileRepository(filepath.Join(base, "nope"))
	if list, err := empty.List(); err != nil || len(list) != 0 {
		t.Fatalf("expected empty list for missing dir, got %v %v", list, err)
	}
}
