package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/exec"
	mysqlTarget "github.com/incidentiq/datagen/internal/infra/targets/mysql"
	pgTarget "github.com/incidentiq/datagen/internal/infra/targets/postgres"
	sqliteTarget "github.com/incidentiq/datagen/internal/infra/targets/sqlite"
	"github.com/incidentiq/datagen/internal/validation"
)

// TargetCheck reports whether a load target is reachable and which table
// operations it permits.
type TargetCheck struct {
	ID           string       `json:"id"`
	TargetID     string       `json:"target_id"`
	CheckedAt    time.Time    `json:"checked_at"`
	OK           bool         `json:"ok"`
	LatencyMS    int64        `json:"latency_ms"`
	ServerVer    string       `json:"server_version,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
	Error        string       `json:"error,omitempty"`
}

type Capabilities struct {
	CanCreate   bool `json:"can_create"`
	CanInsert   bool `json:"can_insert"`
	CanTruncate bool `json:"can_truncate"`
}

func CheckTarget(t *domain.TargetConfig) (*TargetCheck, error) {
	check := &TargetCheck{
		ID:        uuid.NewString(),
		TargetID:  t.ID,
		CheckedAt: time.Now().UTC(),
	}

	if err := validation.NewValidator().ValidateTarget(t); err != nil {
		check.Error = err.Error()
		return check, err
	}

	start := time.Now()
	effective := resolveTargetForRun(t, "")
	tgt, err := buildTarget(effective)
	if err != nil {
		check.Error = "unsupported target kind"
		return check, err
	}
	if err := tgt.Connect(); err != nil {
		check.Error = err.Error()
		check.LatencyMS = time.Since(start).Milliseconds()
		return check, err
	}
	defer tgt.Close()

	check.OK = true
	check.LatencyMS = time.Since(start).Milliseconds()
	if ver, err := serverVersion(effective); err == nil {
		check.ServerVer = ver
	}
	check.Capabilities = probeCapabilities(tgt)
	return check, nil
}

func buildTarget(t *domain.TargetConfig) (exec.Target, error) {
	switch t.Kind {
	case domain.TargetKindPostgres:
		schema := t.Schema
		if schema == "" {
			schema = "public"
		}
		return pgTarget.NewPostgresTarget(t.DSN, schema), nil
	case domain.TargetKindSQLite:
		return sqliteTarget.NewSQLiteTarget(t.DSN), nil
	case domain.TargetKindMySQL:
		return mysqlTarget.NewMySQLTarget(t.DSN, t.Database), nil
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", t.Kind)
	}
}

func serverVersion(t *domain.TargetConfig) (string, error) {
	switch t.Kind {
	case domain.TargetKindPostgres:
		return queryServerVersion("postgres", t.DSN, "SHOW server_version")
	case domain.TargetKindSQLite:
		return queryServerVersion("sqlite3", t.DSN, "SELECT sqlite_version()")
	case domain.TargetKindMySQL:
		cfg, err := mysqlTarget.NewMySQLTarget(t.DSN, t.Database).Config()
		if err != nil {
			return "", err
		}
		return queryServerVersion("mysql", cfg.FormatDSN(), "SELECT VERSION()")
	default:
		return "", fmt.Errorf("unsupported target kind: %s", t.Kind)
	}
}

func queryServerVersion(driver, dsn, query string) (string, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()
	var version string
	if err := db.QueryRow(query).Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func probeCapabilities(tgt exec.Target) Capabilities {
	table := fmt.Sprintf("datagen_check_%d", time.Now().UnixNano())
	columns := []domain.TableColumn{{Name: "id", Type: "INTEGER"}}

	var caps Capabilities
	if err := tgt.CreateTableIfNotExists(table, columns); err != nil {
		return caps
	}
	caps.CanCreate = true

	if err := tgt.InsertBatch(table, []string{"id"}, [][]interface{}{{int64(1)}}); err != nil {
		return caps
	}
	caps.CanInsert = true

	if err := tgt.TruncateTable(table); err != nil {
		return caps
	}
	caps.CanTruncate = true
	return caps
}
