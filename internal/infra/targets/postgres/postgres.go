package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/incidentiq/datagen/internal/domain"
)

// maxParams is the PostgreSQL bind parameter limit per statement.
const maxParams = 65535

type PostgresTarget struct {
	dsn    string
	schema string
	db     *sql.DB
}

func NewPostgresTarget(dsn, schema string) *PostgresTarget {
	if schema == "" {
		schema = "public"
	}
	return &PostgresTarget{
		dsn:    dsn,
		schema: schema,
	}
}

func (t *PostgresTarget) Connect() error {
	db, err := sql.Open("postgres", t.dsn)
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

func (t *PostgresTarget) Close() error {
	if t.db != nil {
		err := t.db.Close()
		t.db = nil
		return err
	}
	return nil
}

func (t *PostgresTarget) CreateTableIfNotExists(table string, columns []domain.TableColumn) error {
	var exists bool
	query := `SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2
	)`
	if err := t.db.QueryRow(query, t.schema, table).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	columnDefs := make([]string, len(columns))
	for i, col := range columns {
		columnDefs[i] = fmt.Sprintf("%s %s", col.Name, mapColumnType(col.Type))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s.%s (%s)",
		t.schema, table, strings.Join(columnDefs, ", "))

	_, err := t.db.Exec(createSQL)
	return err
}

func mapColumnType(sqlType string) string {
	switch sqlType {
	case "INTEGER":
		return "BIGINT"
	case "DECIMAL(10,2)":
		return "NUMERIC(18,2)"
	case "BOOLEAN", "DATE", "TIMESTAMP":
		return sqlType
	default:
		return "TEXT"
	}
}

func (t *PostgresTarget) TruncateTable(tableName string) error {
	_, err := t.db.Exec(fmt.Sprintf("TRUNCATE TABLE %s.%s", t.schema, tableName))
	return err
}

// InsertBatch sends multi-row INSERTs, splitting rows so no statement
// exceeds the bind parameter limit.
func (t *PostgresTarget) InsertBatch(tableName string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 || len(columns) == 0 {
		return nil
	}
	perStmt := maxParams / len(columns)
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		if err := t.insertRows(tableName, columns, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (t *PostgresTarget) insertRows(tableName string, columns []string, rows [][]interface{}) error {
	placeholders := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(columns))

	for i, row := range rows {
		rowPlaceholders := make([]string, len(columns))
		for j := range columns {
			rowPlaceholders[j] = fmt.Sprintf("$%d", i*len(columns)+j+1)
			args = append(args, row[j])
		}
		placeholders[i] = "(" + strings.Join(rowPlaceholders, ", ") + ")"
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES %s",
		t.schema, tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	_, err := t.db.Exec(insertSQL, args...)
	return err
}
