// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memorystore is the optional conversation-memory collaborator
// (spec §6): CreateConversation, AppendMessage, GetConversation, backed by
// SQLite. The orchestrator core never queries the schema directly; it only
// calls this narrow interface.
package memorystore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kadirpekel/ticketflow/internal/model"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS conversations (
    id VARCHAR(255) PRIMARY KEY,
    title TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id VARCHAR(255) NOT NULL,
    role VARCHAR(50) NOT NULL,
    content TEXT NOT NULL,
    sequence_num INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_conversation_messages_conv ON conversation_messages(conversation_id, sequence_num);
`

// Store is a SQLite-backed conversation memory collaborator.
type Store struct {
	db *sql.DB
}

// Open creates (or attaches to) the SQLite database at dsn and ensures the
// schema exists.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("memorystore: dsn is required")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("memorystore: open: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite3 serializes writers; avoid lock contention

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("memorystore: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("memorystore: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateConversation registers a new conversation id. Calling it again for
// an existing id is a no-op (conversations are created lazily by callers
// that don't track whether one already exists).
func (s *Store) CreateConversation(ctx context.Context, id, title string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, title, now, now)
	if err != nil {
		return fmt.Errorf("memorystore: create conversation: %w", err)
	}
	return nil
}

// AppendMessage appends one message to a conversation, creating the
// conversation first if it does not exist.
func (s *Store) AppendMessage(ctx context.Context, convID string, role model.Role, content string) error {
	if convID == "" {
		return fmt.Errorf("memorystore: conversation id is required")
	}

	if err := s.CreateConversation(ctx, convID, ""); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("memorystore: begin tx: %w", err)
	}
	defer tx.Rollback()

	var nextSeq int64
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sequence_num), 0) + 1 FROM conversation_messages WHERE conversation_id = ?`, convID)
	if err := row.Scan(&nextSeq); err != nil {
		return fmt.Errorf("memorystore: next sequence: %w", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversation_messages (conversation_id, role, content, sequence_num, created_at) VALUES (?, ?, ?, ?, ?)`,
		convID, string(role), content, nextSeq, now); err != nil {
		return fmt.Errorf("memorystore: insert message: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, now, convID); err != nil {
		return fmt.Errorf("memorystore: touch conversation: %w", err)
	}

	return tx.Commit()
}

// GetConversation returns a conversation's messages in sequence order.
func (s *Store) GetConversation(ctx context.Context, convID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM conversation_messages WHERE conversation_id = ? ORDER BY sequence_num ASC`, convID)
	if err != nil {
		return nil, fmt.Errorf("memorystore: query messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("memorystore: scan message: %w", err)
		}
		messages = append(messages, model.Message{Role: model.Role(role), Content: content})
	}
	return messages, rows.Err()
}
