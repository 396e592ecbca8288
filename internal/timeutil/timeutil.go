package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the instant in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date string")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.ToUpper(s)); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// ParseYear parses a four digit calendar year.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	y, err := strconv.Atoi(s)
	if err != nil || len(s) != 4 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

// YearSpan returns Jan 1 of from and Dec 31 of to, both at midnight UTC.
func YearSpan(from, to int) (time.Time, time.Time) {
	return time.Date(from, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(to, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Days counts whole days between start and end, truncating partial days.
// It works on Unix seconds since time.Duration saturates after ~292 years.
func Days(start, end time.Time) int64 {
	return Seconds(start, end) / secondsPerDay
}

// Seconds counts whole seconds between start and end.
func Seconds(start, end time.Time) int64 {
	return end.Unix() - start.Unix()
}

const secondsPerDay = 24 * 60 * 60

// IsMidnight reports whether t carries no time-of-day.
func IsMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
