// Package colspec resolves free-form column definitions ("int 18-65",
// "bool 30%", a list of categories) into typed generation directives.
package colspec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/timeutil"
)

// Resolve turns one column definition into a ColumnSpec. Malformed
// parameters fail with a *domain.SpecError; unknown tags and non-string,
// non-list definitions resolve to the unspecified kind.
func Resolve(name string, definition any) (domain.ColumnSpec, error) {
	switch def := definition.(type) {
	case string:
		return resolveString(name, def)
	case []any:
		return resolveCategories(name, def)
	case []string:
		values := make([]any, len(def))
		for i, v := range def {
			values[i] = v
		}
		return resolveCategories(name, values)
	default:
		return domain.ColumnSpec{
			Name:       name,
			Kind:       domain.KindUnspecified,
			Definition: fmt.Sprint(definition),
			Params:     Defaults(domain.KindUnspecified),
		}, nil
	}
}

// ResolveAll resolves every column of a request in order.
func ResolveAll(columns domain.ColumnDefinitions) ([]domain.ColumnSpec, error) {
	specs := make([]domain.ColumnSpec, 0, len(columns))
	for _, c := range columns {
		spec, err := Resolve(c.Name, c.Definition)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func resolveCategories(name string, values []any) (domain.ColumnSpec, error) {
	if len(values) == 0 {
		return domain.ColumnSpec{}, &domain.SpecError{Column: name, Err: errors.New("category list is empty")}
	}
	categories := make([]any, len(values))
	for i, v := range values {
		categories[i] = normalizeCategory(v)
	}
	return domain.ColumnSpec{
		Name:   name,
		Kind:   domain.KindCategoryList,
		Params: domain.Params{Categories: categories},
	}, nil
}

func normalizeCategory(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

func resolveString(name, definition string) (domain.ColumnSpec, error) {
	fields := strings.Fields(strings.ToLower(definition))
	if len(fields) == 0 {
		return domain.ColumnSpec{}, &domain.SpecError{Column: name, Err: errors.New("empty definition")}
	}

	kind, ok := domain.ParseKind(fields[0])
	spec := domain.ColumnSpec{
		Name:       name,
		Kind:       kind,
		Definition: definition,
		Params:     Defaults(kind),
	}
	if !ok {
		return spec, nil
	}

	args := fields[1:]
	fail := func(err error) (domain.ColumnSpec, error) {
		return domain.ColumnSpec{}, &domain.SpecError{Column: name, Definition: definition, Err: err}
	}

	switch kind {
	case domain.KindID, domain.KindEmail, domain.KindPhone:
		if len(args) > 0 {
			return fail(fmt.Errorf("%s takes no parameters", kind))
		}

	case domain.KindInt:
		if len(args) > 1 {
			return fail(errors.New("expected a single min-max range"))
		}
		if len(args) == 1 {
			lo, hi, err := splitRange(args[0])
			if err != nil {
				return fail(err)
			}
			min, err := strconv.ParseInt(lo, 10, 64)
			if err != nil {
				return fail(fmt.Errorf("non-integer lower bound %q", lo))
			}
			max, err := strconv.ParseInt(hi, 10, 64)
			if err != nil {
				return fail(fmt.Errorf("non-integer upper bound %q", hi))
			}
			if max < min {
				return fail(fmt.Errorf("max (%d) is less than min (%d)", max, min))
			}
			spec.Params.IntMin, spec.Params.IntMax = min, max
		}

	case domain.KindFloat, domain.KindMoney, domain.KindCurrent, domain.KindTemperature, domain.KindVoltage:
		if len(args) > 1 {
			return fail(errors.New("expected a single min-max range"))
		}
		if len(args) == 1 {
			min, max, err := parseFloatRange(args[0])
			if err != nil {
				return fail(err)
			}
			spec.Params.Min, spec.Params.Max = min, max
		}
		if kind == domain.KindMoney && spec.Params.Min < 0 {
			return fail(fmt.Errorf("money range must be non-negative, got min %v", spec.Params.Min))
		}

	case domain.KindBool:
		if len(args) > 1 {
			return fail(errors.New("expected a single percentage"))
		}
		if len(args) == 1 {
			raw := strings.TrimRight(args[0], "%")
			pct, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fail(fmt.Errorf("non-numeric probability %q", args[0]))
			}
			if math.IsNaN(pct) || pct < 0 || pct > 100 {
				return fail(fmt.Errorf("probability %v%% outside 0-100%%", pct))
			}
			spec.Params.Probability = pct / 100
		}

	case domain.KindDate:
		if len(args) > 1 {
			return fail(errors.New("expected a single year range"))
		}
		if len(args) == 1 {
			lo, hi, err := splitRange(args[0])
			if err != nil {
				return fail(err)
			}
			from, err := timeutil.ParseYear(lo)
			if err != nil {
				return fail(err)
			}
			to, err := timeutil.ParseYear(hi)
			if err != nil {
				return fail(err)
			}
			if to < from {
				return fail(fmt.Errorf("end year %d is before start year %d", to, from))
			}
			spec.Params.Start, spec.Params.End = timeutil.YearSpan(from, to)
		}

	case domain.KindTimestamp:
		switch len(args) {
		case 0:
		case 2:
			start, err := timeutil.ParseDate(args[0])
			if err != nil {
				return fail(err)
			}
			end, err := timeutil.ParseDate(args[1])
			if err != nil {
				return fail(err)
			}
			if !end.After(start) {
				return fail(fmt.Errorf("end %s is not after start %s", args[1], args[0]))
			}
			spec.Params.Start, spec.Params.End, spec.Params.EndNow = start, end, false
		default:
			return fail(errors.New("timestamp needs both a start and an end date"))
		}
	}

	return spec, nil
}

func parseFloatRange(s string) (float64, float64, error) {
	lo, hi, err := splitRange(s)
	if err != nil {
		return 0, 0, err
	}
	min, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("non-numeric lower bound %q", lo)
	}
	max, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("non-numeric upper bound %q", hi)
	}
	if !isFinite(min) || !isFinite(max) {
		return 0, 0, fmt.Errorf("bounds must be finite, got %q", s)
	}
	if max < min {
		return 0, 0, fmt.Errorf("max (%v) is less than min (%v)", max, min)
	}
	return min, max, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// splitRange splits "lo-hi" on the first dash that follows a digit or a
// decimal point, so negative bounds such as "-10--5" survive.
func splitRange(s string) (string, string, error) {
	for i := 1; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		prev := s[i-1]
		if (prev >= '0' && prev <= '9') || prev == '.' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("expected min-max range, got %q", s)
}

// Defaults returns the parameters a kind uses when the definition supplies
// none.
func Defaults(kind domain.Kind) domain.Params {
	switch kind {
	case domain.KindDate:
		return domain.Params{
			Start: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC),
		}
	case domain.KindInt:
		return domain.Params{IntMin: 0, IntMax: 100}
	case domain.KindFloat:
		return domain.Params{Min: 0, Max: 1}
	case domain.KindMoney:
		return domain.Params{Min: 1000, Max: 100000}
	case domain.KindBool:
		return domain.Params{Probability: 0.5}
	case domain.KindCurrent:
		return domain.Params{Min: 0, Max: 10}
	case domain.KindTemperature:
		return domain.Params{Min: 15, Max: 35}
	case domain.KindVoltage:
		return domain.Params{Min: 110, Max: 240}
	case domain.KindTimestamp:
		return domain.Params{
			Start:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			EndNow: true,
		}
	case domain.KindUnspecified:
		// half-open: [0, 100)
		return domain.Params{IntMin: 0, IntMax: 100}
	default:
		return domain.Params{}
	}
}
