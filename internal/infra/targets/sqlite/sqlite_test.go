package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
)

func TestSQLiteTarget_CreateInsertTruncate(t *testing.T) {
	tg := NewSQLiteTarget(filepath.Join(t.TempDir(), "load.db"))
	if err := tg.Connect(); err != nil {
		t.Fatal(err)
	}
	defer tg.Close()

	cols := []domain.TableColumn{
		{Name: "id", Type: "VARCHAR(255)"},
		{Name: "active", Type: "BOOLEAN"},
		{Name: "signup", Type: "DATE"},
		{Name: "amount", Type: "DECIMAL(10,2)"},
	}
	if err := tg.CreateTableIfNotExists("customers", cols); err != nil {
		t.Fatal(err)
	}
	if err := tg.CreateTableIfNotExists("customers", cols); err != nil {
		t.Fatalf("second create should be a no-op: %v", err)
	}

	rows := [][]interface{}{
		{"CUS000001", true, time.Date(2021, 5, 3, 0, 0, 0, 0, time.UTC), 12.5},
		{"CUS000002", false, time.Date(2022, 6, 9, 0, 0, 0, 0, time.UTC), 99.99},
	}
	names := []string{"id", "active", "signup", "amount"}
	if err := tg.InsertBatch("customers", names, rows); err != nil {
		t.Fatal(err)
	}

	var signup string
	var active int
	if err := tg.db.QueryRow("SELECT signup, active FROM customers WHERE id = 'CUS000001'").Scan(&signup, &active); err != nil {
		t.Fatal(err)
	}
	if signup != "2021-05-03" || active != 1 {
		t.Fatalf("unexpected row: signup=%q active=%d", signup, active)
	}

	if err := tg.TruncateTable("customers"); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := tg.db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected empty table after truncate, got %d", n)
	}
}
