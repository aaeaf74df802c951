package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableReviewStates  = "review_states"
	tableReviewEvents  = "review_events"
	tableSessionEvents = "session_events"
	tablePreferences   = "preferences"
)

// Timestamps are stored as unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS review_states (
		card_id INTEGER PRIMARY KEY,
		queue INTEGER NOT NULL DEFAULT 0,
		stage INTEGER NOT NULL DEFAULT 0,
		due_at INTEGER NOT NULL DEFAULT 0,
		last_review_at INTEGER NOT NULL DEFAULT 0,
		reviews INTEGER NOT NULL DEFAULT 0,
		lapses INTEGER NOT NULL DEFAULT 0,
		suspended INTEGER NOT NULL DEFAULT 0,
		buried_until INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS review_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		card_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		ease INTEGER NOT NULL DEFAULT 0,
		buttons INTEGER NOT NULL DEFAULT 0,
		typed_answer TEXT NOT NULL DEFAULT '',
		similarity REAL NOT NULL DEFAULT 0,
		time_taken_ms INTEGER NOT NULL DEFAULT 0,
		prev_stage INTEGER NOT NULL DEFAULT 0,
		new_stage INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS review_events_card_id ON review_events (card_id)`,
	`CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		cards_reviewed INTEGER NOT NULL DEFAULT 0,
		duration_secs INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
