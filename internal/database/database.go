// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package database handles SQL connection management and migration
// execution using goose. The node store runs on PostgreSQL (through pgx) or
// on an embedded SQLite file (through modernc.org/sqlite); both share the
// same migrations.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed migrations
var embedMigrations embed.FS

// Connect opens a connection pool for the given driver and DSN. It verifies
// the connection with a ping before returning.
func Connect(driver, dsn string) (*sql.DB, error) {
	var sqlDriver string
	switch driver {
	case Postgres:
		sqlDriver = "pgx"
	case SQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("database open: unsupported driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	switch driver {
	case Postgres:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	case SQLite:
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if driver == SQLite {
		if _, err := db.Exec(`PRAGMA busy_timeout=3000;`); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma busy_timeout: %w", err)
		}
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// Migrate runs all pending goose migrations from the embedded SQL files.
// Migrations are embedded at compile time so no external files are needed
// at runtime.
func Migrate(db *sql.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	dialect := "postgres"
	if driver == SQLite {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "driver", driver)
	return nil
}

// Rebind rewrites "?" placeholders to the "$N" form PostgreSQL expects.
// Queries for SQLite are returned unchanged.
func Rebind(driver, query string) string {
	if driver != Postgres {
		return query
	}

	out := make([]byte, 0, len(query)+8)
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			out = append(out, c)
		case c == '?' && !inString:
			n++
			out = append(out, '$')
			out = strconv.AppendInt(out, int64(n), 10)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
