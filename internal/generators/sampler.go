// Package generators draws column values from the distribution each kind
// designates.
//
// A Sampler owns its random source. It is not safe for concurrent use:
// callers that generate in parallel must give each goroutine its own
// Sampler. The same seed and the same sequence of Sample calls always yield
// the same values, except for the timestamp default range, whose end follows
// the Sampler's clock.
package generators

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
)

type Sampler struct {
	seed int64
	rng  *rand.Rand
	now  func() time.Time
}

func NewSampler(seed int64) *Sampler {
	return &Sampler{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
		now:  time.Now,
	}
}

// Reseed restarts the random sequence from seed.
func (s *Sampler) Reseed(seed int64) {
	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))
}

func (s *Sampler) Seed() int64 { return s.seed }

// SetClock replaces the clock used to resolve "now" bounds.
func (s *Sampler) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Sample draws rows values for spec.
func (s *Sampler) Sample(spec domain.ColumnSpec, rows int) ([]any, error) {
	if rows < 0 {
		return nil, &domain.SpecError{Column: spec.Name, Err: fmt.Errorf("negative row count %d", rows)}
	}
	p := spec.Params

	switch spec.Kind {
	case domain.KindID:
		return idSequence(spec.Name, rows), nil
	case domain.KindCategoryList:
		return s.choice(spec.Name, p.Categories, rows)
	case domain.KindDate:
		return s.dates(spec.Name, p.Start, p.End, rows)
	case domain.KindInt:
		return s.uniformInt(spec.Name, p.IntMin, p.IntMax, rows)
	case domain.KindFloat, domain.KindCurrent, domain.KindVoltage:
		return s.uniformFloat(spec.Name, p.Min, p.Max, rows)
	case domain.KindMoney:
		return s.lognormal(spec.Name, p.Min, p.Max, rows)
	case domain.KindBool:
		return s.bernoulli(spec.Name, p.Probability, rows)
	case domain.KindEmail:
		return emails(rows), nil
	case domain.KindPhone:
		return s.phones(rows), nil
	case domain.KindTemperature:
		return s.clippedNormal(spec.Name, p.Min, p.Max, rows)
	case domain.KindTimestamp:
		end := p.End
		if p.EndNow {
			end = s.now().UTC()
		}
		return s.timestamps(spec.Name, p.Start, end, rows)
	case domain.KindUnspecified:
		return s.halfOpenInt(spec.Name, p.IntMin, p.IntMax, rows)
	default:
		return nil, &domain.SpecError{Column: spec.Name, Err: fmt.Errorf("unknown kind %q", spec.Kind)}
	}
}

// floatBounds rejects inverted and non-finite ranges.
func floatBounds(column string, min, max float64) error {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return &domain.SpecError{Column: column, Err: fmt.Errorf("bounds must be finite, got %v-%v", min, max)}
	}
	if max < min {
		return boundsError(column, min, max)
	}
	return nil
}

func boundsError(column string, min, max any) error {
	return &domain.SpecError{Column: column, Err: fmt.Errorf("max (%v) is less than min (%v)", max, min)}
}
