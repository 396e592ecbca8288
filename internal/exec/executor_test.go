package exec

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
)

type recordingTarget struct {
	created   []domain.TableColumn
	truncated bool
	batches   []int
	closed    bool
}

func (r *recordingTarget) Connect() error { return nil }
func (r *recordingTarget) Close() error   { r.closed = true; return nil }
func (r *recordingTarget) CreateTableIfNotExists(table string, columns []domain.TableColumn) error {
	r.created = columns
	return nil
}
func (r *recordingTarget) TruncateTable(string) error { r.truncated = true; return nil }
func (r *recordingTarget) InsertBatch(table string, columns []string, rows [][]interface{}) error {
	r.batches = append(r.batches, len(rows))
	return nil
}

func request(rows int, cols ...domain.ColumnDefinition) *domain.GenerationRequest {
	return &domain.GenerationRequest{Name: "test", RowCount: rows, Columns: cols}
}

func TestGenerate_CategoryScenario(t *testing.T) {
	e := NewExecutor(nil)
	ds, err := e.Generate(request(5, domain.ColumnDefinition{Name: "status", Definition: []any{"open", "closed"}}), 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Columns) != 1 || ds.Columns[0].Name != "status" {
		t.Fatalf("unexpected columns %v", ds.ColumnNames())
	}
	if len(ds.Columns[0].Values) != 5 {
		t.Fatalf("expected 5 values, got %d", len(ds.Columns[0].Values))
	}
	for _, v := range ds.Columns[0].Values {
		if v != "open" && v != "closed" {
			t.Fatalf("unexpected status %v", v)
		}
	}
}

func TestGenerate_IntScenario(t *testing.T) {
	ds, err := NewExecutor(nil).Generate(request(3, domain.ColumnDefinition{Name: "age", Definition: "int 18-65"}), 42)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range ds.Columns[0].Values {
		n, ok := v.(int64)
		if !ok || n < 18 || n > 65 {
			t.Fatalf("unexpected age %#v", v)
		}
	}
}

func TestGenerate_ReproducibleAndOrdered(t *testing.T) {
	e := NewExecutor(nil)
	fixed := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	e.SetClock(func() time.Time { return fixed })
	req := request(50,
		domain.ColumnDefinition{Name: "zeta", Definition: "money"},
		domain.ColumnDefinition{Name: "alpha", Definition: "timestamp"},
		domain.ColumnDefinition{Name: "mid", Definition: "phone"},
	)

	a, err := e.Generate(req, 7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Generate(req, 7)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical datasets for the same seed")
	}
	if !reflect.DeepEqual(a.ColumnNames(), []string{"zeta", "alpha", "mid"}) {
		t.Fatalf("unexpected order %v", a.ColumnNames())
	}
}

func TestGenerate_UnspecifiedWarns(t *testing.T) {
	ds, err := NewExecutor(nil).Generate(request(10, domain.ColumnDefinition{Name: "x", Definition: "widget 1-5"}), 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", ds.Warnings)
	}
}

func TestGenerate_SpecErrors(t *testing.T) {
	e := NewExecutor(nil)
	cases := []*domain.GenerationRequest{
		request(0, domain.ColumnDefinition{Name: "a", Definition: "int"}),
		request(5),
		request(5, domain.ColumnDefinition{Name: "a", Definition: "int 9-1"}),
		request(5, domain.ColumnDefinition{Name: "a", Definition: []any{}}),
	}
	for i, req := range cases {
		_, err := e.Generate(req, 1)
		var se *domain.SpecError
		if !errors.As(err, &se) {
			t.Fatalf("case %d: expected SpecError, got %v", i, err)
		}
	}
}

func TestLoad_BatchesAndModes(t *testing.T) {
	e := NewExecutor(nil)
	ds, err := e.Generate(request(2500,
		domain.ColumnDefinition{Name: "id", Definition: "id"},
		domain.ColumnDefinition{Name: "amount", Definition: "money"},
		domain.ColumnDefinition{Name: "seen_at", Definition: "timestamp 2024-01-01 2024-02-01"},
	), 42)
	if err != nil {
		t.Fatal(err)
	}

	tg := &recordingTarget{}
	n, err := e.Load(ds, tg, "payments", domain.TableModeTruncate, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2500 {
		t.Fatalf("expected 2500 rows loaded, got %d", n)
	}
	if !reflect.DeepEqual(tg.batches, []int{1000, 1000, 500}) {
		t.Fatalf("unexpected batches %v", tg.batches)
	}
	if !tg.truncated || !tg.closed {
		t.Fatal("expected truncate and close")
	}
	want := []domain.TableColumn{{"id", "VARCHAR(255)"}, {"amount", "DECIMAL(10,2)"}, {"seen_at", "TIMESTAMP"}}
	if !reflect.DeepEqual(tg.created, want) {
		t.Fatalf("unexpected table columns %v", tg.created)
	}

	appendOnly := &recordingTarget{}
	if _, err := e.Load(ds, appendOnly, "payments", domain.TableModeAppend, 0); err != nil {
		t.Fatal(err)
	}
	if appendOnly.created != nil || appendOnly.truncated {
		t.Fatal("append must not create or truncate")
	}

	if _, err := e.Load(ds, &recordingTarget{}, "payments", "replace", 10); err == nil {
		t.Fatal("expected unknown mode error")
	}
	if _, err := e.Load(ds, &recordingTarget{}, "bad-table", domain.TableModeCreate, 10); err == nil {
		t.Fatal("expected invalid table error")
	}
}
