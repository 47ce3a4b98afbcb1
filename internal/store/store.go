package store

import (
	"context"
	"fmt"
	"time"
)

// Proposal lifecycle statuses. A proposal is created as pending; only an
// external review decision moves it to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ProposalDraft is the proposal shape the model embeds in its responses.
// Type is an open-ended category string, not a closed enum — new types appear
// from model output without a schema change. Action is an opaque payload; the
// only constraint on it is "is a mapping".
type ProposalDraft struct {
	Type   string         `json:"type"`
	Reason string         `json:"reason"`
	Action map[string]any `json:"action"`
}

// Proposal is a persisted draft: the draft fields plus the identity, status,
// and timestamp the store assigns at save time.
type Proposal struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Reason    string         `json:"reason"`
	Action    map[string]any `json:"action"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
}

// ProposalStore persists change proposals with a lifecycle status.
// SaveProposal is the only write path the extraction pipeline uses;
// SetProposalStatus exists for the review workflow that sits outside it.
type ProposalStore interface {
	// SaveProposal appends the draft as a new pending proposal. The id and
	// timestamp are assigned here, using the caller's now. Write failures
	// come back as *StorageError; a proposal is persisted only if the
	// returned error is nil.
	SaveProposal(ctx context.Context, draft ProposalDraft, now time.Time) (*Proposal, error)

	// ListProposals returns proposals in insertion order. An empty status
	// returns everything.
	ListProposals(ctx context.Context, status string) ([]Proposal, error)

	// SetProposalStatus moves a pending proposal to approved or rejected.
	// Any other transition is an error.
	SetProposalStatus(ctx context.Context, id, status string) error
}

// MemoryEntry is a stored unit of conversational context. Content is opaque
// to this layer. CreatedAt is RFC 3339, set once; the decay weight derived
// from it is never stored.
type MemoryEntry struct {
	ID            int64  `json:"id"`
	Content       string `json:"content"`
	SourceSession string `json:"source_session,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// MemoryStore persists memory entries for time-weighted context assembly.
type MemoryStore interface {
	AddMemory(ctx context.Context, content, sourceSession string, now time.Time) (*MemoryEntry, error)

	// ListMemories returns all entries in insertion order.
	ListMemories(ctx context.Context) ([]MemoryEntry, error)
}

// StorageError marks a failure of the backing store itself, as opposed to the
// soft parse failures the pipeline swallows. Callers see it from SaveProposal
// and must treat the proposal as not persisted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}
