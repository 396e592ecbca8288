// Package export writes a Dataset to a tabular file, a SQL script or a
// Parquet file.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatSQL     Format = "sql"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatSQL, FormatParquet, FormatJSON:
		return f, true
	default:
		return "", false
	}
}

// SQLOptions tunes the SQL script writer.
type SQLOptions struct {
	// PreserveTimestamps declares timestamp-kind columns as TIMESTAMP and
	// writes their time of day. By default every time value is truncated to
	// its date.
	PreserveTimestamps bool
	// Now stamps the script header. Defaults to time.Now.
	Now func() time.Time
}

type Target struct {
	Path      string
	Format    Format
	TableName string
	SQL       SQLOptions
}

// TargetForPath picks the format from the file extension: .sql, .parquet and
// .json are recognised, anything else is written as CSV.
func TargetForPath(path, table string) Target {
	t := Target{Path: path, Format: FormatCSV, TableName: table}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql":
		t.Format = FormatSQL
	case ".parquet":
		t.Format = FormatParquet
	case ".json":
		t.Format = FormatJSON
	}
	return t
}

// TableNameFromPath returns the file's base name without directory or
// extension.
func TableNameFromPath(path string) string {
	base := pathpkg.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(base, pathpkg.Ext(base))
}

// Render writes ds to w in the given format. table is only used by SQL.
func Render(w io.Writer, ds *domain.Dataset, format Format, table string, opts SQLOptions) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, ds)
	case FormatSQL:
		return WriteSQL(w, ds, table, opts)
	case FormatParquet:
		return WriteParquet(w, ds)
	case FormatJSON:
		return WriteJSON(w, ds)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Export renders ds in memory and moves it into place at target.Path. On
// failure nothing is left at the destination and the dataset is untouched.
// It returns the number of bytes written.
func Export(ds *domain.Dataset, target Target) (int64, error) {
	if target.Path == "" {
		return 0, &domain.ExportError{Op: "open", Err: fmt.Errorf("output path is required")}
	}
	table := target.TableName
	if target.Format == FormatSQL && table == "" {
		table = TableNameFromPath(target.Path)
	}

	var buf bytes.Buffer
	if err := Render(&buf, ds, target.Format, table, target.SQL); err != nil {
		return 0, &domain.ExportError{Path: target.Path, Op: "render", Err: err}
	}
	if err := writeFileAtomic(target.Path, buf.Bytes()); err != nil {
		return 0, err
	}
	return int64(buf.Len()), nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &domain.ExportError{Path: path, Op: "open", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &domain.ExportError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &domain.ExportError{Path: path, Op: "write", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return &domain.ExportError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &domain.ExportError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
