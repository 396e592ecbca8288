package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrOutputOutsideDir = errors.New("output path escapes the output directory")

// confineOutput maps a caller-supplied relative output path onto dir.
// Absolute paths and paths that climb out of dir are rejected.
func confineOutput(dir, output string) (string, error) {
	if filepath.IsAbs(output) || filepath.VolumeName(output) != "" || strings.HasPrefix(output, `\`) {
		return "", fmt.Errorf("%w: %q must be relative", ErrOutputOutsideDir, output)
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	candidate := filepath.Clean(filepath.Join(base, output))
	rel, err := filepath.Rel(base, candidate)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutputOutsideDir, output)
	}
	return candidate, nil
}
