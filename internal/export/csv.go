package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/timeutil"
)

// WriteCSV writes a header row followed by one record per row.
func WriteCSV(w io.Writer, ds *domain.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for i := 0; i < ds.RowCount; i++ {
		for j, col := range ds.Columns {
			record[j] = FormatText(col.Kind, col.Values[i])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatText renders a value for text outputs. Dates print as YYYY-MM-DD,
// other times as YYYY-MM-DD HH:MM:SS, and nil as the empty string.
func FormatText(kind domain.Kind, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if kind == domain.KindDate || (kind != domain.KindTimestamp && timeutil.IsMidnight(val)) {
			return val.Format(timeutil.DateLayout)
		}
		return val.Format(timeutil.TimestampLayout)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}
