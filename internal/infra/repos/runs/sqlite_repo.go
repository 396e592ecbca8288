package runs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/incidentiq/datagen/internal/domain"
)

var ErrNotFound = errors.New("run not found")

type Repository interface {
	Init() error
	Create(run *domain.Run) error
	Update(run *domain.Run) error
	Get(id string) (*domain.Run, error)
	List(limit int, status string) ([]*domain.Run, error)
	Close() error
}

// SQLiteRepository keeps the run history in a local SQLite file.
type SQLiteRepository struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{dbPath: dbPath}
}

const runColumns = `id, request_id, request_name, config_hash, seed, rows, columns,
	output, table_name, target_name, target_kind, mode,
	status, started_at, completed_at, stats, error`

func (r *SQLiteRepository) Init() error {
	if dir := filepath.Dir(r.dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create runs db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	r.db = db

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		request_name TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		seed INTEGER NOT NULL,
		rows INTEGER NOT NULL,
		columns INTEGER NOT NULL,
		output TEXT,
		table_name TEXT,
		target_name TEXT,
		target_kind TEXT,
		mode TEXT,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		stats TEXT,
		error TEXT
	)`

	_, err = r.db.Exec(createTableSQL)
	return err
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }

func (r *SQLiteRepository) Create(run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		run.ID, run.RequestID, run.RequestName, run.ConfigHash,
		run.Seed, run.Rows, run.Columns,
		run.Output, run.TableName, run.TargetName, run.TargetKind, run.Mode,
		run.Status, run.StartedAt.UTC().Format(time.RFC3339Nano), formatTime(run.CompletedAt),
		statsValue(run.Stats), run.Error,
	)
	return err
}

func (r *SQLiteRepository) Update(run *domain.Run) error {
	query := `
		UPDATE runs SET
			status = ?, completed_at = ?, stats = ?, error = ?
		WHERE id = ?
	`
	res, err := r.db.Exec(query, run.Status, formatTime(run.CompletedAt), statsValue(run.Stats), run.Error, run.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, run.ID)
	}
	return nil
}

func (r *SQLiteRepository) Get(id string) (*domain.Run, error) {
	row := r.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

func (r *SQLiteRepository) List(limit int, status string) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`

	args := make([]interface{}, 0)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query += " ORDER BY started_at DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var run domain.Run
	var startedAtStr string
	var output, tableName, targetName, targetKind, mode sql.NullString
	var completedAtStr, statsStr, errorStr sql.NullString

	err := s.Scan(
		&run.ID, &run.RequestID, &run.RequestName, &run.ConfigHash,
		&run.Seed, &run.Rows, &run.Columns,
		&output, &tableName, &targetName, &targetKind, &mode,
		&run.Status, &startedAtStr, &completedAtStr, &statsStr, &errorStr,
	)
	if err != nil {
		return nil, err
	}

	run.Output = output.String
	run.TableName = tableName.String
	run.TargetName = targetName.String
	run.TargetKind = targetKind.String
	run.Mode = mode.String
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAtStr)
	if completedAtStr.Valid {
		t, _ := time.Parse(time.RFC3339Nano, completedAtStr.String)
		run.CompletedAt = &t
	}
	if statsStr.Valid && statsStr.String != "" {
		run.Stats = json.RawMessage(statsStr.String)
	}
	run.Error = errorStr.String
	return &run, nil
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func statsValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
