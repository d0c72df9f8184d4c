// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists a local snapshot of fetched conversations so
// the list view can render immediately while the network fetch runs.
// Sync replaces the snapshot wholesale; local rows are never merged
// with server rows.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// schema holds the conversation snapshot plus a sync timestamp.
const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	message_count INTEGER NOT NULL DEFAULT 0,
	forked_from   TEXT
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_updated
	ON conversations(updated_at DESC);
`

// Store is the SQLite-backed conversation snapshot.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the snapshot database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ai-reddit-tui", "snapshot.db"), nil
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the entire snapshot for the given server list and
// stamps the sync time.
func (s *Store) Replace(conversations []*model.Conversation, syncedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO conversations (id, title, created_at, updated_at, message_count, forked_from)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, conv := range conversations {
		var forkedFrom sql.NullString
		if conv.ForkedFrom != "" {
			forkedFrom = sql.NullString{String: conv.ForkedFrom, Valid: true}
		}
		_, err := stmt.Exec(
			conv.ID,
			conv.Title,
			conv.CreatedAt.Unix(),
			conv.UpdatedAt.Unix(),
			conv.MessageCount,
			forkedFrom,
		)
		if err != nil {
			return fmt.Errorf("insert conversation %s: %w", conv.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('synced_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprintf("%d", syncedAt.Unix()))
	if err != nil {
		return fmt.Errorf("stamp sync time: %w", err)
	}

	return tx.Commit()
}

// List returns the snapshot ordered by most recent activity.
func (s *Store) List() ([]*model.Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, title, created_at, updated_at, message_count, forked_from
		FROM conversations
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []*model.Conversation
	for rows.Next() {
		var (
			conv       model.Conversation
			createdAt  int64
			updatedAt  int64
			forkedFrom sql.NullString
		)
		if err := rows.Scan(&conv.ID, &conv.Title, &createdAt, &updatedAt, &conv.MessageCount, &forkedFrom); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conv.CreatedAt = time.Unix(createdAt, 0)
		conv.UpdatedAt = time.Unix(updatedAt, 0)
		conv.ForkedFrom = forkedFrom.String
		out = append(out, &conv)
	}
	return out, rows.Err()
}

// Remove drops one conversation from the snapshot, mirroring an
// optimistic archive.
func (s *Store) Remove(id string) error {
	if _, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("remove conversation: %w", err)
	}
	return nil
}

// SyncedAt returns when the snapshot was last replaced, or the zero
// time for a never-synced store.
func (s *Store) SyncedAt() (time.Time, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'synced_at'").Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read sync time: %w", err)
	}

	var unix int64
	if _, err := fmt.Sscanf(value, "%d", &unix); err != nil {
		return time.Time{}, nil
	}
	return time.Unix(unix, 0), nil
}

// Count returns the number of snapshotted conversations.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}
