package app

import (
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/incidentiq/datagen/internal/domain"
)

// resolveTargetForRun returns a copy of base whose DSN names the database the
// run loads into. dbOverride, when set, replaces base.Database.
func resolveTargetForRun(base *domain.TargetConfig, dbOverride string) *domain.TargetConfig {
	if base == nil {
		return nil
	}
	t := *base
	if dbOverride != "" {
		t.Database = dbOverride
	}
	if t.Database == "" {
		return &t
	}
	switch t.Kind {
	case domain.TargetKindPostgres:
		t.DSN = postgresDSNWithDatabase(t.DSN, t.Database)
	case domain.TargetKindMySQL:
		t.DSN = mysqlDSNWithDatabase(t.DSN, t.Database)
	}
	return &t
}

// postgresDSNWithDatabase handles both URL and keyword/value DSNs.
func postgresDSNWithDatabase(dsn, database string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return dsn
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		u.Path = "/" + database
		return u.String()
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(strings.ToLower(f), "dbname=") {
			fields[i] = "dbname=" + database
			return strings.Join(fields, " ")
		}
	}
	return strings.Join(append(fields, "dbname="+database), " ")
}

// mysqlDSNWithDatabase leaves an unparseable DSN alone so the connect error
// reports the original text.
func mysqlDSNWithDatabase(dsn, database string) string {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	cfg.DBName = database
	return cfg.FormatDSN()
}
