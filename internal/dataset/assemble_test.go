package dataset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/incidentiq/datagen/internal/domain"
)

func TestAssemble_PreservesColumnOrder(t *testing.T) {
	ds, err := Assemble(2, []Sequence{
		{Name: "zeta", Kind: domain.KindInt, Values: []any{int64(1), int64(2)}},
		{Name: "alpha", Kind: domain.KindBool, Values: []any{true, false}},
		{Name: "mid", Values: []any{"x", "y"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := ds.ColumnNames(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if row := ds.Row(1); !reflect.DeepEqual(row, []any{int64(2), false, "y"}) {
		t.Fatalf("unexpected row %v", row)
	}
	if ds.RowCount != 2 {
		t.Fatalf("expected row count 2, got %d", ds.RowCount)
	}
}

func TestAssemble_ShapeMismatch(t *testing.T) {
	_, err := Assemble(3, []Sequence{
		{Name: "ok", Values: []any{1, 2, 3}},
		{Name: "short", Values: []any{1, 2}},
	})
	var se *domain.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if se.Column != "short" || se.Want != 3 || se.Got != 2 {
		t.Fatalf("unexpected shape error %+v", se)
	}
}

func TestAssemble_ZeroRows(t *testing.T) {
	ds, err := Assemble(0, []Sequence{{Name: "a", Values: []any{}}})
	if err != nil {
		t.Fatal(err)
	}
	if ds.RowCount != 0 || len(ds.Columns) != 1 {
		t.Fatalf("unexpected dataset %+v", ds)
	}
}

func TestAssemble_RejectsEmptyAndDuplicate(t *testing.T) {
	if _, err := Assemble(1, nil); err == nil {
		t.Fatal("expected error for no columns")
	}
	_, err := Assemble(1, []Sequence{{Name: "a", Values: []any{1}}, {Name: "a", Values: []any{2}}})
	var se *domain.SpecError
	if !errors.As(err, &se) || se.Column != "a" {
		t.Fatalf("expected duplicate column SpecError, got %v", err)
	}
}
