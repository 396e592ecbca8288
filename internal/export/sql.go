package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/timeutil"
	"github.com/incidentiq/datagen/internal/validation"
)

// ErrInvalidName marks a table or column name that cannot be written into
// SQL.
var ErrInvalidName = errors.New("invalid sql name")

// SQLBatchSize is the number of rows per INSERT statement.
const SQLBatchSize = 100

const (
	SQLTypeInteger   = "INTEGER"
	SQLTypeDecimal   = "DECIMAL(10,2)"
	SQLTypeBoolean   = "BOOLEAN"
	SQLTypeDate      = "DATE"
	SQLTypeTimestamp = "TIMESTAMP"
	SQLTypeVarchar   = "VARCHAR(255)"
)

// WriteSQL writes a header comment, a CREATE TABLE IF NOT EXISTS statement
// and batched INSERT statements for ds. Reserved words used as table or
// column names are double-quoted.
func WriteSQL(w io.Writer, ds *domain.Dataset, table string, opts SQLOptions) error {
	if !validation.IsSafeName(table) {
		return fmt.Errorf("%w: invalid table name %q", ErrInvalidName, table)
	}
	names := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		if !validation.IsSafeName(col.Name) {
			return fmt.Errorf("%w: invalid column name %q", ErrInvalidName, col.Name)
		}
		names[i] = validation.QuoteIdentifier(col.Name)
	}
	quotedTable := validation.QuoteIdentifier(table)
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- SQL Insert Statements for %s\n", table)
	fmt.Fprintf(bw, "-- Generated: %s\n", now().Format(timeutil.TimestampLayout))
	fmt.Fprintf(bw, "-- Rows: %s\n\n", humanize.Comma(int64(ds.RowCount)))

	bw.WriteString("-- Create table (adjust data types as needed)\n")
	fmt.Fprintf(bw, "CREATE TABLE IF NOT EXISTS %s (\n", quotedTable)
	keepTime := make([]bool, len(ds.Columns))
	for i, col := range ds.Columns {
		sqlType := ColumnSQLType(col, opts)
		keepTime[i] = sqlType == SQLTypeTimestamp
		comma := ","
		if i == len(ds.Columns)-1 {
			comma = ""
		}
		fmt.Fprintf(bw, "    %s %s%s\n", names[i], sqlType, comma)
	}
	bw.WriteString(");\n\n")

	bw.WriteString("-- Insert data\n")
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES\n", quotedTable, strings.Join(names, ", "))
	literals := make([]string, len(ds.Columns))
	for start := 0; start < ds.RowCount; start += SQLBatchSize {
		end := min(start+SQLBatchSize, ds.RowCount)
		bw.WriteString(insert)
		for i := start; i < end; i++ {
			for j, col := range ds.Columns {
				literals[j] = FormatLiteral(col.Values[i], keepTime[j])
			}
			term := ","
			if i == end-1 {
				term = ";"
			}
			fmt.Fprintf(bw, "    (%s)%s\n", strings.Join(literals, ", "), term)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// FormatLiteral renders v as a SQL literal. Times keep their time of day
// only when keepTime is set.
func FormatLiteral(v any, keepTime bool) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(val)
	case time.Time:
		if keepTime {
			return quote(val.Format(timeutil.TimestampLayout))
		}
		return quote(val.Format(timeutil.DateLayout))
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return FormatLiteral(float64(val), keepTime)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "NULL"
		}
		return strconv.FormatFloat(val, 'f', 2, 64)
	default:
		return quote(fmt.Sprint(val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ColumnSQLType is InferSQLType with the timestamp opt-in applied.
func ColumnSQLType(col domain.DatasetColumn, opts SQLOptions) string {
	t := InferSQLType(col.Values)
	if opts.PreserveTimestamps && col.Kind == domain.KindTimestamp && t == SQLTypeDate {
		return SQLTypeTimestamp
	}
	return t
}

// InferSQLType picks a column type from the values it holds. Nil values are
// ignored; a mix of integers and floats is DECIMAL; any other mix, or no
// values at all, is VARCHAR.
func InferSQLType(values []any) string {
	var ints, floats, bools, times, others int
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int, int32, int64:
			ints++
		case float32, float64:
			floats++
		case bool:
			bools++
		case time.Time:
			times++
		default:
			others++
		}
	}
	switch {
	case others > 0:
		return SQLTypeVarchar
	case ints > 0 && bools+times == 0 && floats == 0:
		return SQLTypeInteger
	case floats > 0 && bools+times == 0:
		return SQLTypeDecimal
	case bools > 0 && ints+floats+times == 0:
		return SQLTypeBoolean
	case times > 0 && ints+floats+bools == 0:
		return SQLTypeDate
	default:
		return SQLTypeVarchar
	}
}
