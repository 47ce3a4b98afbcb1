package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leavenlabs/leaven/internal/store"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proposals.json")
	return New(path), path
}

func testDraft() store.ProposalDraft {
	return store.ProposalDraft{
		Type:   "semantic_refinement",
		Reason: "Test",
		Action: map[string]any{},
	}
}

// readDocument parses the raw on-disk document.
func readDocument(t *testing.T, path string) map[string][]store.Proposal {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc map[string][]store.Proposal
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document not valid JSON: %v", err)
	}
	return doc
}

func TestSaveProposalCreatesDocument(t *testing.T) {
	s, path := testStore(t)

	p, err := s.SaveProposal(context.Background(), testDraft(), time.Now())
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}
	if p.ID == "" || p.Timestamp == "" {
		t.Errorf("missing id or timestamp: %+v", p)
	}

	doc := readDocument(t, path)
	pending := doc["pending_proposals"]
	if len(pending) != 1 {
		t.Fatalf("pending_proposals = %d entries, want 1", len(pending))
	}
	if pending[0].Status != store.StatusPending {
		t.Errorf("status = %q, want pending", pending[0].Status)
	}
	if pending[0].ID != p.ID {
		t.Errorf("id mismatch: %q vs %q", pending[0].ID, p.ID)
	}
}

func TestSaveProposalAppendsPreservingFirst(t *testing.T) {
	s, path := testStore(t)
	ctx := context.Background()

	first, err := s.SaveProposal(ctx, store.ProposalDraft{
		Type:   "tension_adjustment",
		Reason: "first",
		Action: map[string]any{"foo": "bar"},
	}, time.Now())
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}

	second, err := s.SaveProposal(ctx, testDraft(), time.Now())
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}
	if first.ID == second.ID {
		t.Errorf("duplicate ids: %s", first.ID)
	}

	pending := readDocument(t, path)["pending_proposals"]
	if len(pending) != 2 {
		t.Fatalf("count = %d, want 2", len(pending))
	}
	if pending[0].ID != first.ID || pending[0].Reason != "first" || pending[0].Action["foo"] != "bar" {
		t.Errorf("first entry mutated: %+v", pending[0])
	}
}

func TestLoadMalformedDocumentStartsEmpty(t *testing.T) {
	s, path := testStore(t)

	if err := os.WriteFile(path, []byte("{corrupt"), 0644); err != nil {
		t.Fatalf("write corrupt document: %v", err)
	}

	// Unreadable document degrades to empty; the save proceeds.
	if _, err := s.SaveProposal(context.Background(), testDraft(), time.Now()); err != nil {
		t.Fatalf("SaveProposal over corrupt document: %v", err)
	}

	pending := readDocument(t, path)["pending_proposals"]
	if len(pending) != 1 {
		t.Errorf("count = %d, want 1", len(pending))
	}
}

func TestSaveProposalStorageError(t *testing.T) {
	// Parent "directory" is a regular file, so the write cannot succeed.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	s := New(filepath.Join(blocker, "proposals.json"))

	_, err := s.SaveProposal(context.Background(), testDraft(), time.Now())
	if err == nil {
		t.Fatal("expected a storage error")
	}
	var se *store.StorageError
	if !errors.As(err, &se) {
		t.Errorf("error = %v, want *store.StorageError", err)
	}
}

func TestSetProposalStatus(t *testing.T) {
	s, path := testStore(t)
	ctx := context.Background()

	a, _ := s.SaveProposal(ctx, testDraft(), time.Now())
	b, _ := s.SaveProposal(ctx, testDraft(), time.Now())

	if err := s.SetProposalStatus(ctx, a.ID, store.StatusApproved); err != nil {
		t.Fatalf("SetProposalStatus: %v", err)
	}

	// Document order untouched, only the status changed in place.
	pending := readDocument(t, path)["pending_proposals"]
	if pending[0].ID != a.ID || pending[0].Status != store.StatusApproved {
		t.Errorf("first record = %+v", pending[0])
	}
	if pending[1].ID != b.ID || pending[1].Status != store.StatusPending {
		t.Errorf("second record = %+v", pending[1])
	}

	if err := s.SetProposalStatus(ctx, a.ID, store.StatusRejected); err == nil {
		t.Error("expected error re-reviewing a decided proposal")
	}
	if err := s.SetProposalStatus(ctx, "no-such-id", store.StatusApproved); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestListProposalsFilter(t *testing.T) {
	s, _ := testStore(t)
	ctx := context.Background()

	a, _ := s.SaveProposal(ctx, testDraft(), time.Now())
	s.SaveProposal(ctx, testDraft(), time.Now())
	s.SetProposalStatus(ctx, a.ID, store.StatusRejected)

	all, err := s.ListProposals(ctx, "")
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	pending, err := s.ListProposals(ctx, store.StatusPending)
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1", len(pending))
	}

	if _, err := s.ListProposals(ctx, "bogus"); err == nil {
		t.Error("expected error for unknown status filter")
	}
}

func TestSaveProposalCancelledContext(t *testing.T) {
	s, _ := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SaveProposal(ctx, testDraft(), time.Now())
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
	var se *store.StorageError
	if !errors.As(err, &se) {
		t.Errorf("error = %v, want *store.StorageError", err)
	}
}
