package generators

import (
	"errors"

	"github.com/incidentiq/datagen/internal/domain"
)

// choice picks uniformly, with replacement, from categories.
func (s *Sampler) choice(column string, categories []any, rows int) ([]any, error) {
	if len(categories) == 0 {
		return nil, &domain.SpecError{Column: column, Err: errors.New("category list is empty")}
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = categories[s.rng.Intn(len(categories))]
	}
	return out, nil
}
