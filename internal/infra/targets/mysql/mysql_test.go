package mysql

import (
	"testing"
	"time"
)

func TestConfig_OverridesDatabaseAndParsesTime(t *testing.T) {
	tg := NewMySQLTarget("root:secret@tcp(127.0.0.1:4000)/test?charset=utf8mb4", "tenant_a")
	cfg, err := tg.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBName != "tenant_a" {
		t.Fatalf("expected database override, got %q", cfg.DBName)
	}
	if !cfg.ParseTime || cfg.Loc != time.UTC {
		t.Fatal("expected UTC time parsing")
	}
	if cfg.Addr != "127.0.0.1:4000" || cfg.User != "root" {
		t.Fatalf("unexpected address or user: %s %s", cfg.Addr, cfg.User)
	}
}

func TestConfig_RejectsMalformedDSN(t *testing.T) {
	if _, err := NewMySQLTarget("not a dsn", "").Config(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBuildInsert(t *testing.T) {
	q, args := buildInsert("orders", []string{"id", "total"}, [][]interface{}{{"A", 1.5}, {"B", 2.0}})
	want := "INSERT INTO `orders` (`id`, `total`) VALUES (?, ?), (?, ?)"
	if q != want {
		t.Fatalf("got %q, want %q", q, want)
	}
	if len(args) != 4 || args[2] != "B" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMapColumnType(t *testing.T) {
	if mapColumnType("BOOLEAN") != "TINYINT(1)" || mapColumnType("TIMESTAMP") != "DATETIME" || mapColumnType("VARCHAR(255)") != "VARCHAR(255)" {
		t.Fatal("unexpected dialect mapping")
	}
}
