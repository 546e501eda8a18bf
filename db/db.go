// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect identifies the SQL backend in use
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect maps a configured database type onto a Dialect
func ParseDialect(dbType string) (Dialect, error) {
	switch Dialect(strings.ToLower(dbType)) {
	case SQLite:
		return SQLite, nil
	case Postgres:
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database type %q", dbType)
}

// LockClause returns the row-lock suffix for SELECT statements.
// SQLite has no row locks; writers are serialized by the single connection.
func (d Dialect) LockClause() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (d Dialect) gooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return string(d)
}

// Open connects to the configured backend and verifies the connection
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch dialect {
	case Postgres:
		conn, err = sql.Open("postgres", dsn)
	case SQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// One writer at a time; also keeps every query on the same file handle
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// sqliteDSN enables foreign keys and a busy timeout unless the caller set
// pragmas, and stores timestamps in a sortable text form.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_pragma=") {
		params = append(params, "_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_time_format=") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// IsUniqueViolation reports whether err is a unique/primary key constraint failure
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}

	return false
}
