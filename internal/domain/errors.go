package domain

import "fmt"

// SpecError reports a column definition or request that cannot be resolved.
// Column is empty for request-level problems.
type SpecError struct {
	Column     string
	Definition string
	Err        error
}

func (e *SpecError) Error() string {
	if e == nil {
		return ""
	}
	if e.Column == "" {
		return fmt.Sprintf("invalid request: %v", e.Err)
	}
	if e.Definition == "" {
		return fmt.Sprintf("column %q: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("column %q (%q): %v", e.Column, e.Definition, e.Err)
}

func (e *SpecError) Unwrap() error { return e.Err }

// ShapeError reports a column whose length disagrees with the row count.
type ShapeError struct {
	Column string
	Want   int
	Got    int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("column %q has %d values, want %d", e.Column, e.Got, e.Want)
}

// ExportError reports a sink that could not be written. The dataset that was
// being exported is still valid.
type ExportError struct {
	Path string
	Op   string
	Err  error
}

func (e *ExportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path == "" {
		return fmt.Sprintf("export %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
