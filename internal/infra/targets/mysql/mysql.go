// Package mysql loads datasets into MySQL-compatible servers (MySQL, TiDB).
package mysql

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/incidentiq/datagen/internal/domain"
)

// maxPlaceholders is the server limit on bind parameters per statement.
const maxPlaceholders = 65535

type MySQLTarget struct {
	dsn      string
	database string
	db       *sql.DB
}

// NewMySQLTarget connects with dsn (go-sql-driver format). A non-empty
// database overrides the one named in the DSN.
func NewMySQLTarget(dsn, database string) *MySQLTarget {
	return &MySQLTarget{dsn: dsn, database: database}
}

// Config returns the driver configuration the target connects with.
func (t *MySQLTarget) Config() (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(t.dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if t.database != "" {
		cfg.DBName = t.database
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["time_zone"] = "'+00:00'"
	return cfg, nil
}

func (t *MySQLTarget) Connect() error {
	cfg, err := t.Config()
	if err != nil {
		return err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return err
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	t.db = db
	return nil
}

func (t *MySQLTarget) Close() error {
	if t.db != nil {
		err := t.db.Close()
		t.db = nil
		return err
	}
	return nil
}

func (t *MySQLTarget) CreateTableIfNotExists(table string, columns []domain.TableColumn) error {
	columnDefs := make([]string, len(columns))
	for i, col := range columns {
		columnDefs[i] = fmt.Sprintf("`%s` %s", col.Name, mapColumnType(col.Type))
	}
	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (%s)", table, strings.Join(columnDefs, ", "))
	_, err := t.db.Exec(createSQL)
	return err
}

func mapColumnType(sqlType string) string {
	switch sqlType {
	case "INTEGER":
		return "BIGINT"
	case "DECIMAL(10,2)":
		return "DECIMAL(18,2)"
	case "BOOLEAN":
		return "TINYINT(1)"
	case "DATE":
		return "DATE"
	case "TIMESTAMP":
		return "DATETIME"
	default:
		return "VARCHAR(255)"
	}
}

func (t *MySQLTarget) TruncateTable(tableName string) error {
	_, err := t.db.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", tableName))
	return err
}

// InsertBatch runs multi-row INSERTs inside one transaction.
func (t *MySQLTarget) InsertBatch(tableName string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 || len(columns) == 0 {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	perStmt := maxPlaceholders / len(columns)
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		query, args := buildInsert(tableName, columns, rows[start:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func buildInsert(tableName string, columns []string, rows [][]interface{}) (string, []interface{}) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "`" + c + "`"
	}
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	placeholders := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(columns))
	for i, row := range rows {
		placeholders[i] = rowPlaceholder
		args = append(args, row...)
	}
	query := fmt.Sprintf("INSERT INTO `%s` (%s) VALUES %s",
		tableName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return query, args
}
