// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// load_run.go records ingestion runs in the database for auditing and
// debugging. Each entry captures when a load started and finished, how many
// nodes it inserted and why it failed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kontentsource/internal/database"
)

// Load run statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// timestampLayout has a fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LoadRunStore handles load run log operations.
type LoadRunStore struct {
	db     *sql.DB
	driver string
}

// NewLoadRunStore creates a new LoadRunStore.
func NewLoadRunStore(db *sql.DB, driver string) *LoadRunStore {
	return &LoadRunStore{db: db, driver: driver}
}

// Start records a new running load and returns its id.
func (s *LoadRunStore) Start(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, database.Rebind(s.driver, `
		INSERT INTO load_runs (id, started_at, status)
		VALUES (?, ?, ?)
	`), id.String(), time.Now().UTC().Format(timestampLayout), RunRunning)
	if err != nil {
		return uuid.Nil, fmt.Errorf("start load run: %w", err)
	}
	return id, nil
}

// Finish marks a run as finished. A nil runErr marks it succeeded.
func (s *LoadRunStore) Finish(ctx context.Context, id uuid.UUID, nodes int, runErr error) {
	status, msg := RunSucceeded, ""
	if runErr != nil {
		status, msg = RunFailed, runErr.Error()
	}

	_, err := s.db.ExecContext(ctx, database.Rebind(s.driver, `
		UPDATE load_runs
		SET finished_at = ?, status = ?, nodes = ?, error = ?
		WHERE id = ?
	`), time.Now().UTC().Format(timestampLayout), status, nodes, msg, id.String())
	if err != nil {
		// Log but don't fail: the run log is best-effort.
		slog.Warn("failed to record load run",
			"run_id", id,
			"status", status,
			"error", err,
		)
		return
	}
	slog.Debug("load run recorded",
		"run_id", id,
		"status", status,
		"nodes", nodes,
	)
}

// Recent returns the most recent load runs, newest first. Limited to the
// specified count.
func (s *LoadRunStore) Recent(ctx context.Context, limit int) ([]LoadRun, error) {
	rows, err := s.db.QueryContext(ctx, database.Rebind(s.driver, `
		SELECT id, started_at, finished_at, status, nodes, error
		FROM load_runs
		ORDER BY started_at DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("query load runs: %w", err)
	}
	defer rows.Close()

	var runs []LoadRun
	for rows.Next() {
		var (
			r           LoadRun
			id, started string
			finished    sql.NullString
		)
		if err := rows.Scan(&id, &started, &finished, &r.Status, &r.Nodes, &r.Error); err != nil {
			return nil, fmt.Errorf("scan load run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse load run id: %w", err)
		}
		r.StartedAt, _ = time.Parse(timestampLayout, started)
		if finished.Valid {
			t, _ := time.Parse(timestampLayout, finished.String)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun is a single ingestion run.
type LoadRun struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Status     string     `json:"status"`
	Nodes      int        `json:"nodes"`
	Error      string     `json:"error,omitempty"`
}
