package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "proposals: change proposals awaiting review",
		SQL: `
CREATE TABLE proposals (
    id         TEXT PRIMARY KEY,
    type       TEXT NOT NULL,
    reason     TEXT NOT NULL,
    action     TEXT NOT NULL, -- JSON object, opaque to the store
    status     TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at TEXT NOT NULL, -- RFC 3339
    seq        INTEGER NOT NULL -- insertion order, the only ordering guarantee
);

CREATE INDEX idx_proposals_status ON proposals(status);
CREATE INDEX idx_proposals_seq    ON proposals(seq);
`,
	},
	{
		Version:     2,
		Description: "memories: time-weighted context entries",
		SQL: `
CREATE TABLE memories (
    id             INTEGER PRIMARY KEY,
    content        TEXT NOT NULL,
    source_session TEXT,
    created_at     TEXT NOT NULL -- RFC 3339, decay weight is derived from this at query time
);

CREATE INDEX idx_memories_created ON memories(created_at);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
