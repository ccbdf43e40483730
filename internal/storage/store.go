// Package storage reads feedback from the source table and persists the
// analysis tables. SQLite (go-sqlite3) and PostgreSQL (lib/pq) are supported;
// queries are written with ? placeholders and rebound per driver.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type WriteMode string

const (
	Append  WriteMode = "append"
	Replace WriteMode = "replace"
)

func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Append, nil
	case Append, Replace:
		return m, nil
	default:
		return "", fmt.Errorf("unknown write mode %q (want append or replace)", s)
	}
}

type Store struct {
	db     *sql.DB
	driver string
}

func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Driver() string { return s.driver }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// rebind rewrites ? placeholders to $N for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) InitSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.driver == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS feedback_enriched (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	department_name TEXT NOT NULL DEFAULT '',
	date            DATETIME,
	feedback_text   TEXT
);

CREATE TABLE IF NOT EXISTS sentiment_analysis (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	feedback_id     INTEGER NOT NULL,
	department_name TEXT NOT NULL DEFAULT '',
	date            DATETIME,
	feedback_text   TEXT,
	clean_feedback  TEXT NOT NULL DEFAULT '',
	sentiment_label TEXT NOT NULL,
	keywords        TEXT NOT NULL DEFAULT '[]',
	created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sa_department_date ON sentiment_analysis(department_name, date);
CREATE INDEX IF NOT EXISTS idx_sa_run ON sentiment_analysis(run_id);

CREATE TABLE IF NOT EXISTS keywords_sentiment_summary (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	department      TEXT NOT NULL DEFAULT '',
	sentiment_label TEXT NOT NULL,
	keyword         TEXT NOT NULL,
	count           INTEGER NOT NULL,
	created_at      DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_kss_department ON keywords_sentiment_summary(department, sentiment_label)
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS feedback_enriched (
	id              BIGSERIAL PRIMARY KEY,
	department_name TEXT NOT NULL DEFAULT '',
	date            TIMESTAMPTZ,
	feedback_text   TEXT
);

CREATE TABLE IF NOT EXISTS sentiment_analysis (
	id              BIGSERIAL PRIMARY KEY,
	run_id          TEXT NOT NULL,
	feedback_id     BIGINT NOT NULL,
	department_name TEXT NOT NULL DEFAULT '',
	date            TIMESTAMPTZ,
	feedback_text   TEXT,
	clean_feedback  TEXT NOT NULL DEFAULT '',
	sentiment_label TEXT NOT NULL,
	keywords        TEXT NOT NULL DEFAULT '[]',
	created_at      TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sa_department_date ON sentiment_analysis(department_name, date);
CREATE INDEX IF NOT EXISTS idx_sa_run ON sentiment_analysis(run_id);

CREATE TABLE IF NOT EXISTS keywords_sentiment_summary (
	id              BIGSERIAL PRIMARY KEY,
	run_id          TEXT NOT NULL,
	department      TEXT NOT NULL DEFAULT '',
	sentiment_label TEXT NOT NULL,
	keyword         TEXT NOT NULL,
	count           INTEGER NOT NULL,
	created_at      TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_kss_department ON keywords_sentiment_summary(department, sentiment_label)
`
