// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"kontentsource/internal/database"
)

func TestLoadRunStoreStartFinish(t *testing.T) {
	db := testDB(t)
	s := NewLoadRunStore(db, database.SQLite)
	ctx := context.Background()

	id, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Finish should not error (best-effort).
	s.Finish(ctx, id, 42, nil)

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	r := runs[0]
	if r.ID != id {
		t.Errorf("id = %s, want %s", r.ID, id)
	}
	if r.Status != RunSucceeded || r.Nodes != 42 {
		t.Errorf("run = %+v", r)
	}
	if r.FinishedAt == nil || r.FinishedAt.Before(r.StartedAt) {
		t.Errorf("unexpected finish time %v for start %v", r.FinishedAt, r.StartedAt)
	}
}

func TestLoadRunStoreRecentOrder(t *testing.T) {
	db := testDB(t)
	s := NewLoadRunStore(db, database.SQLite)
	ctx := context.Background()

	first, _ := s.Start(ctx)
	s.Finish(ctx, first, 1, errors.New("fetch items: HTTP 500"))
	second, _ := s.Start(ctx)

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	// Most recent should be first.
	if runs[0].ID != second || runs[0].Status != RunRunning || runs[0].FinishedAt != nil {
		t.Errorf("expected running second run first, got %+v", runs[0])
	}
	if runs[1].Status != RunFailed || runs[1].Error != "fetch items: HTTP 500" {
		t.Errorf("expected failed first run, got %+v", runs[1])
	}
}
