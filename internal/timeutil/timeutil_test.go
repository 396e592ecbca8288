package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", got)
	}

	got, err = ParseDate("2024-03-05t10:00:00+02:00")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hour() != 8 || got.Location() != time.UTC {
		t.Fatalf("expected UTC conversion, got %v", got)
	}

	for _, bad := range []string{"", "2024/03/05", "yesterday", "2024-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestYearSpanAndDays(t *testing.T) {
	start, end := YearSpan(2020, 2020)
	if Days(start, end) != 365 {
		t.Fatalf("expected 365 days in leap year span to Dec 31, got %d", Days(start, end))
	}
	if _, err := ParseYear("20a0"); err == nil {
		t.Fatal("expected invalid year")
	}
	if y, err := ParseYear("2024"); err != nil || y != 2024 {
		t.Fatalf("unexpected year %d err=%v", y, err)
	}
}

func TestDays_WideSpans(t *testing.T) {
	start, end := YearSpan(1800, 2400)
	var want int64
	for cur := start; cur.Before(end); {
		next := cur.AddDate(200, 0, 0)
		if next.After(end) {
			next = end
		}
		want += int64(next.Sub(cur) / (24 * time.Hour))
		cur = next
	}
	if got := Days(start, end); got != want || got < 219_000 {
		t.Fatalf("expected %d days across six centuries, got %d", want, got)
	}
	if got := Seconds(start, end); got != Days(start, end)*86400 {
		t.Fatalf("expected whole-day seconds, got %d", got)
	}
	if got := Days(end, start); got >= 0 {
		t.Fatalf("expected negative span for reversed bounds, got %d", got)
	}
}

func TestIsMidnight(t *testing.T) {
	if !IsMidnight(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected midnight")
	}
	if IsMidnight(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)) {
		t.Fatal("expected non-midnight")
	}
}
