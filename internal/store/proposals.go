package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// validateDraft enforces the required-field invariant: type and reason
// non-empty, action present. The internal shape of action is not inspected.
func validateDraft(draft ProposalDraft) error {
	if strings.TrimSpace(draft.Type) == "" {
		return fmt.Errorf("empty proposal type")
	}
	if strings.TrimSpace(draft.Reason) == "" {
		return fmt.Errorf("empty proposal reason")
	}
	if draft.Action == nil {
		return fmt.Errorf("missing proposal action")
	}
	return nil
}

// SaveProposal inserts the draft as a new pending proposal. The id (UUIDv4)
// and timestamp are assigned here; the row-level locking of SQLite serializes
// concurrent writers.
func (db *DB) SaveProposal(ctx context.Context, draft ProposalDraft, now time.Time) (*Proposal, error) {
	if err := validateDraft(draft); err != nil {
		return nil, fmt.Errorf("invalid proposal: %w", err)
	}

	action, err := json.Marshal(draft.Action)
	if err != nil {
		return nil, fmt.Errorf("encode action: %w", err)
	}

	p := &Proposal{
		ID:        uuid.NewString(),
		Type:      draft.Type,
		Reason:    draft.Reason,
		Action:    draft.Action,
		Status:    StatusPending,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO proposals (id, type, reason, action, status, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM proposals))
	`, p.ID, p.Type, p.Reason, string(action), p.Status, p.Timestamp)
	if err != nil {
		return nil, &StorageError{Op: "save proposal", Err: err}
	}

	return p, nil
}

// ListProposals returns proposals in insertion order. An empty status returns
// all of them.
func (db *DB) ListProposals(ctx context.Context, status string) ([]Proposal, error) {
	query := `SELECT id, type, reason, action, status, created_at FROM proposals`
	var args []any
	if status != "" {
		if !ValidStatus(status) {
			return nil, fmt.Errorf("unknown status %q", status)
		}
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY seq`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list proposals", Err: err}
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		var p Proposal
		var action string
		if err := rows.Scan(&p.ID, &p.Type, &p.Reason, &action, &p.Status, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		if err := json.Unmarshal([]byte(action), &p.Action); err != nil {
			return nil, fmt.Errorf("decode action for %s: %w", p.ID, err)
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// SetProposalStatus moves a pending proposal to approved or rejected.
// This is the review workflow's surface — the extraction pipeline never
// transitions a proposal past pending.
func (db *DB) SetProposalStatus(ctx context.Context, id, status string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("invalid status transition to %q", status)
	}

	result, err := db.ExecContext(ctx, `
		UPDATE proposals SET status = ? WHERE id = ? AND status = 'pending'
	`, status, id)
	if err != nil {
		return &StorageError{Op: "set proposal status", Err: err}
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no pending proposal with id %s", id)
	}
	return nil
}
