// Package dataset pairs named value sequences into a row-aligned Dataset.
package dataset

import (
	"fmt"

	"github.com/incidentiq/datagen/internal/domain"
)

// Sequence is one generated column before assembly.
type Sequence struct {
	Name   string
	Kind   domain.Kind
	Values []any
}

// Assemble checks that every sequence holds exactly rowCount values and
// returns them as a Dataset in the order given.
func Assemble(rowCount int, sequences []Sequence) (*domain.Dataset, error) {
	if rowCount < 0 {
		return nil, &domain.SpecError{Err: fmt.Errorf("row count must be >= 0, got %d", rowCount)}
	}
	if len(sequences) == 0 {
		return nil, &domain.SpecError{Err: fmt.Errorf("dataset has no columns")}
	}

	seen := make(map[string]struct{}, len(sequences))
	ds := &domain.Dataset{
		RowCount: rowCount,
		Columns:  make([]domain.DatasetColumn, 0, len(sequences)),
	}
	for _, seq := range sequences {
		if _, dup := seen[seq.Name]; dup {
			return nil, &domain.SpecError{Column: seq.Name, Err: fmt.Errorf("duplicate column")}
		}
		seen[seq.Name] = struct{}{}
		if len(seq.Values) != rowCount {
			return nil, &domain.ShapeError{Column: seq.Name, Want: rowCount, Got: len(seq.Values)}
		}
		ds.Columns = append(ds.Columns, domain.DatasetColumn{
			Name:   seq.Name,
			Kind:   seq.Kind,
			Values: seq.Values,
		})
	}
	return ds, nil
}
