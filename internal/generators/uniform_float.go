package generators

import "math"

func (s *Sampler) uniformFloat(column string, min, max float64, rows int) ([]any, error) {
	if err := floatBounds(column, min, max); err != nil {
		return nil, err
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = round2(min + s.rng.Float64()*(max-min))
	}
	return out, nil
}

func (s *Sampler) bernoulli(column string, p float64, rows int) ([]any, error) {
	if !(p >= 0 && p <= 1) {
		return nil, boundsError(column, 0.0, p)
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = s.rng.Float64() < p
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clip(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}
