package generators

import (
	"fmt"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/timeutil"
)

// dates draws whole days in [start, end). The end day itself is never
// produced.
func (s *Sampler) dates(column string, start, end time.Time, rows int) ([]any, error) {
	days := timeutil.Days(start, end)
	if days <= 0 {
		return nil, &domain.SpecError{Column: column, Err: fmt.Errorf("date range %s..%s is empty",
			start.Format(timeutil.DateLayout), end.Format(timeutil.DateLayout))}
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = start.AddDate(0, 0, int(s.rng.Int63n(days)))
	}
	return out, nil
}

// timestamps draws whole seconds in [start, end).
func (s *Sampler) timestamps(column string, start, end time.Time, rows int) ([]any, error) {
	seconds := timeutil.Seconds(start, end)
	if seconds <= 0 {
		return nil, &domain.SpecError{Column: column, Err: fmt.Errorf("timestamp range %s..%s is empty",
			start.Format(time.RFC3339), end.Format(time.RFC3339))}
	}
	out := make([]any, rows)
	for i := range out {
		out[i] = time.Unix(start.Unix()+s.rng.Int63n(seconds), 0).In(start.Location())
	}
	return out, nil
}
