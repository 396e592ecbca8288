package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/incidentiq/datagen/internal/domain"
)

// MaxRows caps a single request so one call cannot exhaust memory.
const MaxRows = 10_000_000

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// identifier validation: allow simple SQL identifiers only (prevents injection via table/column names).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	return IsSafeName(s) && !IsReservedWord(s)
}

// IsSafeName reports whether s is a plain identifier. Reserved words pass;
// they are only usable once quoted.
func IsSafeName(s string) bool {
	return identRe.MatchString(s)
}

func IsReservedWord(s string) bool {
	_, ok := reservedWords[strings.ToLower(s)]
	return ok
}

// QuoteIdentifier double-quotes reserved words and leaves other names bare.
// s must already be a safe name.
func QuoteIdentifier(s string) string {
	if IsReservedWord(s) {
		return `"` + s + `"`
	}
	return s
}

func IsValidMode(mode string) bool {
	switch mode {
	case domain.TableModeCreate, domain.TableModeTruncate, domain.TableModeAppend:
		return true
	default:
		return false
	}
}

// ValidateRequest checks the request-level shape. Column definitions are
// checked later, when they are resolved.
func (v *Validator) ValidateRequest(req *domain.GenerationRequest) error {
	if req == nil {
		return errors.New("request is required")
	}
	if req.RowCount <= 0 {
		return fmt.Errorf("rows must be > 0, got %d", req.RowCount)
	}
	if req.RowCount > MaxRows {
		return fmt.Errorf("rows must be <= %d, got %d", MaxRows, req.RowCount)
	}
	if len(req.Columns) == 0 {
		return errors.New("request must have at least one column")
	}

	columnNames := make(map[string]bool, len(req.Columns))
	for _, col := range req.Columns {
		if strings.TrimSpace(col.Name) == "" {
			return errors.New("column name is required")
		}
		if columnNames[col.Name] {
			return fmt.Errorf("duplicate column name: %s", col.Name)
		}
		columnNames[col.Name] = true
	}

	if req.TableName != "" && !IsSafeName(req.TableName) {
		return fmt.Errorf("invalid table_name identifier: %s", req.TableName)
	}
	return nil
}

func (v *Validator) ValidateTarget(t *domain.TargetConfig) error {
	if t.Name == "" {
		return errors.New("target name is required")
	}
	if t.Kind == "" {
		return errors.New("target kind is required")
	}
	if t.DSN == "" {
		return errors.New("target dsn is required")
	}
	if t.Database != "" && !IsValidIdentifier(t.Database) {
		return fmt.Errorf("invalid target database identifier: %s", t.Database)
	}

	switch t.Kind {
	case domain.TargetKindPostgres:
		if t.Schema != "" && !IsValidIdentifier(t.Schema) {
			return fmt.Errorf("invalid target schema identifier: %s", t.Schema)
		}
	case domain.TargetKindSQLite:
		if t.Schema != "" || t.Database != "" {
			return errors.New("sqlite targets must not set schema or database")
		}
	case domain.TargetKindMySQL:
		if t.Schema != "" {
			return errors.New("mysql targets must not set schema; use database")
		}
	default:
		return fmt.Errorf("unsupported target kind: %s", t.Kind)
	}

	return nil
}

var ErrNoSink = errors.New("run needs an output path or a target")

func (v *Validator) ValidateRunRequest(req *domain.RunRequest) error {
	hasRequestID := req.RequestID != ""
	hasRequest := req.Request != nil

	if !hasRequestID && !hasRequest {
		return errors.New("either request_id or request must be provided")
	}
	if hasRequestID && hasRequest {
		return errors.New("only one of request_id or request must be provided")
	}

	hasTargetID := req.TargetID != ""
	hasTarget := req.Target != nil
	if hasTargetID && hasTarget {
		return errors.New("only one of target_id or target must be provided")
	}

	if hasTargetID || hasTarget {
		if req.Mode == "" {
			return errors.New("mode is required when loading into a target")
		}
		if !IsValidMode(req.Mode) {
			return fmt.Errorf("invalid mode: %s", req.Mode)
		}
	} else if hasRequest && req.Output == "" && req.Request.Output == "" {
		// Stored requests are checked once resolved.
		return ErrNoSink
	}

	if req.Rows < 0 {
		return fmt.Errorf("rows must not be negative, got %d", req.Rows)
	}
	if req.TableName != "" && !IsSafeName(req.TableName) {
		return fmt.Errorf("invalid table_name identifier: %s", req.TableName)
	}
	// Database loads do not quote names, so reserved words stay out.
	if (hasTargetID || hasTarget) && req.TableName != "" && IsReservedWord(req.TableName) {
		return fmt.Errorf("table_name %q is a reserved word and cannot be loaded into a target", req.TableName)
	}

	if req.Request != nil {
		if err := v.ValidateRequest(req.Request); err != nil {
			return fmt.Errorf("request validation failed: %w", err)
		}
	}
	if req.Target != nil {
		if err := v.ValidateTarget(req.Target); err != nil {
			return fmt.Errorf("target validation failed: %w", err)
		}
	}
	return nil
}
