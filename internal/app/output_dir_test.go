package app

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestConfineOutput(t *testing.T) {
	dir := t.TempDir()

	got, err := confineOutput(dir, "reports/customers.csv")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "reports", "customers.csv"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	got, err = confineOutput(dir, "a/../b.sql")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "b.sql"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	for _, bad := range []string{"/etc/cron.d/x.csv", "../victim.csv", "a/../../victim.csv", ".", "sub/.."} {
		if _, err := confineOutput(dir, bad); !errors.Is(err, ErrOutputOutsideDir) {
			t.Fatalf("expected %q to be rejected, got %v", bad, err)
		}
	}
}
