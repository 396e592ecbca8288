package generators

import (
	"fmt"

	"github.com/incidentiq/datagen/internal/domain"
)

// uniformInt draws integers in [min, max], both inclusive.
func (s *Sampler) uniformInt(column string, min, max int64, rows int) ([]any, error) {
	if max < min {
		return nil, boundsError(column, min, max)
	}
	span := max - min + 1
	if span <= 0 {
		return nil, &domain.SpecError{Column: column, Err: fmt.Errorf("range %d-%d is too wide", min, max)}
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = min + s.rng.Int63n(span)
	}
	return out, nil
}

// halfOpenInt draws integers in [min, max).
func (s *Sampler) halfOpenInt(column string, min, max int64, rows int) ([]any, error) {
	if max <= min {
		return nil, &domain.SpecError{Column: column, Err: fmt.Errorf("max (%d) must be greater than min (%d)", max, min)}
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = min + s.rng.Int63n(max-min)
	}
	return out, nil
}
