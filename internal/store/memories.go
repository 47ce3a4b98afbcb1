package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AddMemory stores a new memory entry. The created_at timestamp is assigned
// from the caller's now and never changes afterward.
func (db *DB) AddMemory(ctx context.Context, content, sourceSession string, now time.Time) (*MemoryEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty memory content")
	}

	createdAt := now.UTC().Format(time.RFC3339Nano)
	result, err := db.ExecContext(ctx, `
		INSERT INTO memories (content, source_session, created_at)
		VALUES (?, NULLIF(?, ''), ?)
	`, content, sourceSession, createdAt)
	if err != nil {
		return nil, &StorageError{Op: "add memory", Err: err}
	}

	id, _ := result.LastInsertId()
	return &MemoryEntry{
		ID:            id,
		Content:       content,
		SourceSession: sourceSession,
		CreatedAt:     createdAt,
	}, nil
}

// ListMemories returns all memory entries in insertion order. Weights are not
// stored here — the ranker derives them from created_at at query time.
func (db *DB) ListMemories(ctx context.Context) ([]MemoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, content, source_session, created_at FROM memories ORDER BY id
	`)
	if err != nil {
		return nil, &StorageError{Op: "list memories", Err: err}
	}
	defer rows.Close()

	var entries []MemoryEntry
	for rows.Next() {
		var e MemoryEntry
		var source sql.NullString
		if err := rows.Scan(&e.ID, &e.Content, &source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		e.SourceSession = source.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
