package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Kind is the generation strategy of a column. The set is closed; tags are
// resolved to a Kind once, when a definition is parsed.
type Kind string

const (
	KindID           Kind = "id"
	KindCategoryList Kind = "category-list"
	KindDate         Kind = "date"
	KindInt          Kind = "int"
	KindFloat        Kind = "float"
	KindMoney        Kind = "money"
	KindBool         Kind = "bool"
	KindEmail        Kind = "email"
	KindPhone        Kind = "phone"
	KindCurrent      Kind = "current"
	KindTemperature  Kind = "temperature"
	KindVoltage      Kind = "voltage"
	KindTimestamp    Kind = "timestamp"
	KindUnspecified  Kind = "unspecified"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{
	KindID, KindCategoryList, KindDate, KindInt, KindFloat, KindMoney, KindBool,
	KindEmail, KindPhone, KindCurrent, KindTemperature, KindVoltage, KindTimestamp,
	KindUnspecified,
}

// ParseKind maps a definition tag to its kind. Category lists and the
// unspecified fallback have no string tag.
func ParseKind(tag string) (Kind, bool) {
	switch k := Kind(strings.ToLower(tag)); k {
	case KindID, KindDate, KindInt, KindFloat, KindMoney, KindBool, KindEmail,
		KindPhone, KindCurrent, KindTemperature, KindVoltage, KindTimestamp:
		return k, true
	default:
		return KindUnspecified, false
	}
}

// Params holds the kind-specific bounds of a column. Only the fields relevant
// to the column's kind are set.
type Params struct {
	IntMin      int64     `json:"int_min,omitempty"`
	IntMax      int64     `json:"int_max,omitempty"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	Start       time.Time `json:"start,omitempty"`
	End         time.Time `json:"end,omitempty"`
	EndNow      bool      `json:"end_now,omitempty"`
	Probability float64   `json:"probability,omitempty"`
	Categories  []any     `json:"categories,omitempty"`
}

type ColumnSpec struct {
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Definition string `json:"definition,omitempty"`
	Params     Params `json:"params"`
}

type GenerationRequest struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	RowCount    int               `json:"rows" yaml:"rows"`
	Columns     ColumnDefinitions `json:"columns" yaml:"columns"`
	Output      string            `json:"output,omitempty" yaml:"output,omitempty"`
	TableName   string            `json:"table_name,omitempty" yaml:"table_name,omitempty"`
	Seed        *int64            `json:"seed,omitempty" yaml:"seed,omitempty"`
}

type Dataset struct {
	RowCount int             `json:"row_count"`
	Columns  []DatasetColumn `json:"columns"`
	Warnings []string        `json:"warnings,omitempty"`
}

type DatasetColumn struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Values []any  `json:"values"`
}

func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

func (d *Dataset) Column(name string) (*DatasetColumn, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// Row returns the i-th record across all columns, in column order.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = c.Values[i]
	}
	return row
}

type TargetConfig struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Kind     string            `json:"kind" yaml:"kind"`
	DSN      string            `json:"dsn" yaml:"dsn"`
	Database string            `json:"database,omitempty" yaml:"database,omitempty"`
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

const (
	TargetKindSQLite   = "sqlite"
	TargetKindPostgres = "postgres"
	TargetKindMySQL    = "mysql"
)

const (
	TableModeCreate   = "create"
	TableModeTruncate = "truncate"
	TableModeAppend   = "append"
)

type RunRequest struct {
	RequestID          string             `json:"request_id,omitempty"`
	Request            *GenerationRequest `json:"request,omitempty"`
	Seed               *int64             `json:"seed,omitempty"`
	Rows               int                `json:"rows,omitempty"`
	Output             string             `json:"output,omitempty"`
	TableName          string             `json:"table_name,omitempty"`
	TargetID           string             `json:"target_id,omitempty"`
	Target             *TargetConfig      `json:"target,omitempty"`
	Mode               string             `json:"mode,omitempty"`
	Publish            bool               `json:"publish,omitempty"`
	PreserveTimestamps bool               `json:"preserve_timestamps,omitempty"`
}

type Run struct {
	ID          string          `json:"id"`
	RequestID   string          `json:"request_id"`
	RequestName string          `json:"request_name"`
	ConfigHash  string          `json:"config_hash"`
	Seed        int64           `json:"seed"`
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	Output      string          `json:"output,omitempty"`
	TableName   string          `json:"table_name,omitempty"`
	TargetName  string          `json:"target_name,omitempty"`
	TargetKind  string          `json:"target_kind,omitempty"`
	Mode        string          `json:"mode,omitempty"`
	Status      RunStatus       `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty"`
	Error       string          `json:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

type RunStats struct {
	RowsGenerated    int      `json:"rows_generated"`
	ColumnsGenerated int      `json:"columns_generated"`
	RowsLoaded       int64    `json:"rows_loaded,omitempty"`
	BytesWritten     int64    `json:"bytes_written,omitempty"`
	ArtifactURI      string   `json:"artifact_uri,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	GenerateSeconds  float64  `json:"generate_seconds"`
	ExportSeconds    float64  `json:"export_seconds,omitempty"`
	LoadSeconds      float64  `json:"load_seconds,omitempty"`
	DurationSeconds  float64  `json:"duration_seconds"`
}

// TableColumn is a column of a table created in a load target. Type is one
// of the generic types produced by SQL type inference; targets map it to
// their dialect.
type TableColumn struct {
	Name string
	Type string
}
