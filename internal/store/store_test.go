// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared test helpers for the store tests. Every
// behavioral test runs against both the in-memory store and a SQLite
// database migrated into a temporary directory.
package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"kontentsource/internal/database"
)

// testDB opens a migrated SQLite database in a temporary directory. A
// cleanup function is registered to close the connection when the test
// finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(database.SQLite, filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open test DB: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db, database.SQLite); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// forEachStore runs fn as a subtest against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		fn(t, NewSQL(testDB(t), database.SQLite))
	})
}
