// Package filestore persists proposals as a single JSON document on disk.
// It is the reference backing store: a document with one top-level
// "pending_proposals" field holding proposals in insertion order. The SQLite
// store in internal/store is the drop-in substitution for production use.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leavenlabs/leaven/internal/store"
)

// Store is a JSON-document ProposalStore. All writes are read-modify-write
// cycles over the whole document, so a process-wide mutex serializes them;
// the document is replaced atomically (temp file + rename) so readers never
// observe a partial write.
type Store struct {
	path string
	mu   sync.Mutex
}

// document is the on-disk shape.
type document struct {
	PendingProposals []store.Proposal `json:"pending_proposals"`
}

// New creates a file store backed by the JSON document at path. The file is
// created on first save.
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the default document path: ~/.leaven/proposals.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".leaven", "proposals.json"), nil
}

// load reads the current document. An absent or unreadable file is an empty
// document, never an error — first write wins.
func (s *Store) load() document {
	var doc document
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("filestore: unreadable document %s, starting empty: %v", s.path, err)
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("filestore: malformed document %s, starting empty: %v", s.path, err)
		return document{}
	}
	return doc
}

// write replaces the document atomically: marshal, write to a temp file in
// the same directory, rename over the target.
func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".proposals-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// SaveProposal appends the draft as a new pending proposal and rewrites the
// document. Existing records are carried over unchanged.
func (s *Store) SaveProposal(ctx context.Context, draft store.ProposalDraft, now time.Time) (*store.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.StorageError{Op: "save proposal", Err: err}
	}
	if draft.Type == "" || draft.Reason == "" || draft.Action == nil {
		return nil, fmt.Errorf("invalid proposal: type, reason, and action are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	p := store.Proposal{
		ID:        uuid.NewString(),
		Type:      draft.Type,
		Reason:    draft.Reason,
		Action:    draft.Action,
		Status:    store.StatusPending,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
	doc.PendingProposals = append(doc.PendingProposals, p)

	if err := s.write(doc); err != nil {
		return nil, &store.StorageError{Op: "save proposal", Err: err}
	}
	return &p, nil
}

// ListProposals returns proposals in insertion order, optionally filtered
// by status.
func (s *Store) ListProposals(ctx context.Context, status string) ([]store.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, &store.StorageError{Op: "list proposals", Err: err}
	}
	if status != "" && !store.ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	if status == "" {
		return doc.PendingProposals, nil
	}

	var out []store.Proposal
	for _, p := range doc.PendingProposals {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

// SetProposalStatus moves a pending proposal to approved or rejected,
// updating the record in place without disturbing document order.
func (s *Store) SetProposalStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return &store.StorageError{Op: "set proposal status", Err: err}
	}
	if status != store.StatusApproved && status != store.StatusRejected {
		return fmt.Errorf("invalid status transition to %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for i := range doc.PendingProposals {
		if doc.PendingProposals[i].ID != id {
			continue
		}
		if doc.PendingProposals[i].Status != store.StatusPending {
			return fmt.Errorf("proposal %s is %s, not pending", id, doc.PendingProposals[i].Status)
		}
		doc.PendingProposals[i].Status = status
		if err := s.write(doc); err != nil {
			return &store.StorageError{Op: "set proposal status", Err: err}
		}
		return nil
	}
	return fmt.Errorf("no proposal with id %s", id)
}
