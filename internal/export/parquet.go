package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/validation"
)

const parquetParallelism = 4

// WriteParquet writes ds as a single SNAPPY-compressed Parquet file. Column
// types follow InferSQLType; dates and timestamps are stored as UTF8 text.
func WriteParquet(w io.Writer, ds *domain.Dataset) error {
	types := make([]string, len(ds.Columns))
	for i, col := range ds.Columns {
		if !validation.IsSafeName(col.Name) {
			return fmt.Errorf("%w: invalid column name %q", ErrInvalidName, col.Name)
		}
		types[i] = parquetPhysicalType(InferSQLType(col.Values))
	}

	buf := &bytes.Buffer{}
	pfw := writerfile.NewWriterFile(buf)
	pw, err := writer.NewJSONWriter(buildParquetSchema(ds, types), pfw, parquetParallelism)
	if err != nil {
		return fmt.Errorf("parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	row := make(map[string]any, len(ds.Columns))
	for i := 0; i < ds.RowCount; i++ {
		for j, col := range ds.Columns {
			row[col.Name] = parquetValue(col.Kind, col.Values[i], types[j])
		}
		b, err := json.Marshal(row)
		if err != nil {
			_ = pw.WriteStop()
			return err
		}
		if err := pw.Write(string(b)); err != nil {
			_ = pw.WriteStop()
			_ = pfw.Close()
			return fmt.Errorf("parquet row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = pfw.Close()
		return fmt.Errorf("parquet flush: %w", err)
	}
	_ = pfw.Close()

	_, err = w.Write(buf.Bytes())
	return err
}

func buildParquetSchema(ds *domain.Dataset, types []string) string {
	fields := make([]map[string]string, 0, len(ds.Columns))
	for i, col := range ds.Columns {
		tag := fmt.Sprintf("name=%s, type=%s, repetitiontype=OPTIONAL", col.Name, types[i])
		if types[i] == "BYTE_ARRAY" {
			tag = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", col.Name)
		}
		fields = append(fields, map[string]string{"Tag": tag})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func parquetPhysicalType(sqlType string) string {
	switch sqlType {
	case SQLTypeBoolean:
		return "BOOLEAN"
	case SQLTypeInteger:
		return "INT64"
	case SQLTypeDecimal:
		return "DOUBLE"
	default:
		return "BYTE_ARRAY"
	}
}

func parquetValue(kind domain.Kind, v any, physical string) any {
	if v == nil {
		return nil
	}
	switch physical {
	case "DOUBLE":
		switch n := v.(type) {
		case int64:
			return float64(n)
		case int:
			return float64(n)
		}
		return v
	case "BYTE_ARRAY":
		if t, ok := v.(time.Time); ok {
			return FormatText(kind, t)
		}
		if _, ok := v.(string); !ok {
			return FormatText(kind, v)
		}
	}
	return v
}
