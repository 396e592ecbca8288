package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/incidentiq/datagen/internal/domain"
	"github.com/incidentiq/datagen/internal/timeutil"
)

type SQLiteTarget struct {
	path string
	db   *sql.DB
}

func NewSQLiteTarget(path string) *SQLiteTarget {
	return &SQLiteTarget{path: path}
}

func (t *SQLiteTarget) Connect() error {
	db, err := sql.Open("sqlite3", t.path)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	t.db = db
	return nil
}

func (t *SQLiteTarget) Close() error {
	if t.db != nil {
		err := t.db.Close()
		t.db = nil
		return err
	}
	return nil
}

func (t *SQLiteTarget) CreateTableIfNotExists(table string, columns []domain.TableColumn) error {
	query := `SELECT name FROM sqlite_master WHERE type='table' AND name=?`
	var name string
	err := t.db.QueryRow(query, table).Scan(&name)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	columnDefs := make([]string, len(columns))
	for i, col := range columns {
		columnDefs[i] = fmt.Sprintf("%s %s", col.Name, t.mapColumnType(col.Type))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(columnDefs, ", "))
	_, err = t.db.Exec(createSQL)
	return err
}

func (t *SQLiteTarget) mapColumnType(sqlType string) string {
	switch sqlType {
	case "INTEGER", "BOOLEAN":
		return "INTEGER"
	case "DECIMAL(10,2)":
		return "REAL"
	default:
		return "TEXT"
	}
}

func (t *SQLiteTarget) TruncateTable(tableName string) error {
	_, err := t.db.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	return err
}

func (t *SQLiteTarget) InsertBatch(tableName string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for _, row := range rows {
		for i, val := range row {
			switch v := val.(type) {
			case time.Time:
				if timeutil.IsMidnight(v) {
					args[i] = v.Format(timeutil.DateLayout)
				} else {
					args[i] = v.Format(timeutil.TimestampLayout)
				}
			case bool:
				if v {
					args[i] = 1
				} else {
					args[i] = 0
				}
			default:
				args[i] = val
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}
