// Package audit is the optional SQL-backed invocation history: every
// `hygge` invocation, when a DSN is configured, appends one row
// recording what ran and how it went. Grounded on
// source/database/database.go, which dispatches to one of six SQL
// drivers by a short name and does minimal error handling on a side
// channel that is never load-bearing for the thing it's watching.
package audit

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"  // mysql:
	_ "github.com/lib/pq"               // postgres:
	_ "github.com/microsoft/go-mssqldb" // sqlserver:
	_ "github.com/nakagami/firebirdsql" // firebird:
	_ "github.com/sijms/go-ora"         // oracle:
	_ "modernc.org/sqlite"              // sqlite:
)

// DefaultDSN is the DSN `audit tail` reads when HYGGE_AUDIT_DSN is not
// set; invocations are only recorded when a DSN is configured.
const DefaultDSN = "sqlite:hygge_audit.db"

// drivers maps a DSN scheme (the part before the first ':') to the
// database/sql driver name registered by that scheme's blank import.
var drivers = map[string]string{
	"sqlite":    "sqlite",
	"mysql":     "mysql",
	"postgres":  "postgres",
	"sqlserver": "sqlserver",
	"firebird":  "firebirdsql",
	"oracle":    "oracle",
}

// Record is one logged invocation.
type Record struct {
	Time      time.Time
	Subcommand string
	Input     string
	ExitCode  int
	Duration  time.Duration
}

// Sink is an open audit log connection.
type Sink struct {
	db *sql.DB
}

// Open parses dsn's scheme, opens the matching driver against the
// remainder of the string, and ensures the invocations table exists.
func Open(dsn string) (*Sink, error) {
	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("audit: dsn %q has no scheme", dsn)
	}
	driverName, ok := drivers[scheme]
	if !ok {
		return nil, fmt.Errorf("audit: unknown dsn scheme %q (want one of sqlite, mysql, postgres, sqlserver, firebird, oracle)", scheme)
	}
	db, err := sql.Open(driverName, rest)
	if err != nil {
		return nil, fmt.Errorf("audit: opening %s: %w", scheme, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("audit: pinging %s: %w", scheme, err)
	}
	s := &Sink{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS invocations (
	ts TEXT,
	subcommand TEXT,
	input TEXT,
	exit_code INTEGER,
	duration_ms INTEGER
)`)
	if err != nil {
		return fmt.Errorf("audit: creating invocations table: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Append records one invocation.
func (s *Sink) Append(r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO invocations (ts, subcommand, input, exit_code, duration_ms) VALUES ($1, $2, $3, $4, $5)`,
		r.Time.UTC().Format(time.RFC3339Nano), r.Subcommand, r.Input, r.ExitCode, r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("audit: inserting row: %w", err)
	}
	return nil
}

// Tail returns the most recent n invocations, newest first.
func (s *Sink) Tail(n int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT ts, subcommand, input, exit_code, duration_ms FROM invocations ORDER BY ts DESC LIMIT $1`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: querying invocations: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var ts string
		var r Record
		var durMs int64
		if err := rows.Scan(&ts, &r.Subcommand, &r.Input, &r.ExitCode, &durMs); err != nil {
			return nil, fmt.Errorf("audit: scanning row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("audit: parsing timestamp %q: %w", ts, err)
		}
		r.Time = t
		r.Duration = time.Duration(durMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
