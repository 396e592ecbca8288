package generators

import (
	"fmt"
	"math"

	"github.com/incidentiq/datagen/internal/domain"
)

// clippedNormal draws from N(mid, (max-min)/6) and clips to [min, max].
// Tail mass lands on the bounds.
func (s *Sampler) clippedNormal(column string, min, max float64, rows int) ([]any, error) {
	if err := floatBounds(column, min, max); err != nil {
		return nil, err
	}
	mean := (min + max) / 2
	std := (max - min) / 6
	out := make([]any, rows)
	for i := range out {
		v := s.rng.NormFloat64()*std + mean
		out[i] = round2(clip(v, min, max))
	}
	return out, nil
}

// lognormal draws exp(N(ln(mid), 0.5)) clipped to [min, max], which gives
// the right skew typical of incomes and prices.
func (s *Sampler) lognormal(column string, min, max float64, rows int) ([]any, error) {
	if err := floatBounds(column, min, max); err != nil {
		return nil, err
	}
	if min < 0 {
		return nil, &domain.SpecError{Column: column, Err: fmt.Errorf("lognormal range must be non-negative, got min %v", min)}
	}
	mu := math.Log((min + max) / 2)
	const sigma = 0.5
	out := make([]any, rows)
	for i := range out {
		v := math.Exp(mu + sigma*s.rng.NormFloat64())
		out[i] = round2(clip(v, min, max))
	}
	return out, nil
}
