package store

import (
	"context"
	"testing"
	"time"
)

func testDraft() ProposalDraft {
	return ProposalDraft{
		Type:   "semantic_refinement",
		Reason: "Test",
		Action: map[string]any{},
	}
}

func TestSaveProposal(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	now := time.Now()
	p, err := db.SaveProposal(ctx, testDraft(), now)
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}
	if p.ID == "" {
		t.Error("missing id")
	}
	if p.Status != StatusPending {
		t.Errorf("Status = %q, want pending", p.Status)
	}
	if p.Timestamp == "" {
		t.Error("missing timestamp")
	}
	if _, err := time.Parse(time.RFC3339Nano, p.Timestamp); err != nil {
		t.Errorf("timestamp %q not RFC 3339: %v", p.Timestamp, err)
	}

	stored, err := db.ListProposals(ctx, "")
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("count = %d, want 1", len(stored))
	}
	if stored[0].Type != "semantic_refinement" || stored[0].Reason != "Test" {
		t.Errorf("stored = %+v", stored[0])
	}
}

func TestSaveProposalAppends(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	first, err := db.SaveProposal(ctx, ProposalDraft{
		Type:   "tension_adjustment",
		Reason: "first",
		Action: map[string]any{"foo": "bar"},
	}, time.Now())
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}

	second, err := db.SaveProposal(ctx, ProposalDraft{
		Type:   "semantic_refinement",
		Reason: "second",
		Action: map[string]any{},
	}, time.Now())
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}

	if first.ID == second.ID {
		t.Errorf("duplicate ids: %s", first.ID)
	}

	stored, err := db.ListProposals(ctx, "")
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("count = %d, want 2", len(stored))
	}

	// Insertion order preserved, first record untouched.
	if stored[0].ID != first.ID || stored[0].Reason != "first" || stored[0].Status != StatusPending {
		t.Errorf("first entry mutated: %+v", stored[0])
	}
	if stored[0].Action["foo"] != "bar" {
		t.Errorf("first entry action mutated: %v", stored[0].Action)
	}
	if stored[1].ID != second.ID {
		t.Errorf("insertion order lost: %+v", stored[1])
	}
}

func TestSaveProposalValidation(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		draft ProposalDraft
	}{
		{"empty type", ProposalDraft{Reason: "r", Action: map[string]any{}}},
		{"empty reason", ProposalDraft{Type: "t", Action: map[string]any{}}},
		{"nil action", ProposalDraft{Type: "t", Reason: "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.SaveProposal(ctx, tt.draft, time.Now()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSetProposalStatus(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	p, err := db.SaveProposal(ctx, testDraft(), time.Now())
	if err != nil {
		t.Fatalf("SaveProposal: %v", err)
	}

	if err := db.SetProposalStatus(ctx, p.ID, StatusApproved); err != nil {
		t.Fatalf("SetProposalStatus: %v", err)
	}

	approved, err := db.ListProposals(ctx, StatusApproved)
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != p.ID {
		t.Errorf("approved = %+v", approved)
	}

	// A decided proposal can't be re-reviewed.
	if err := db.SetProposalStatus(ctx, p.ID, StatusRejected); err == nil {
		t.Error("expected error re-reviewing a decided proposal")
	}

	// Only approved/rejected are valid transitions.
	if err := db.SetProposalStatus(ctx, p.ID, "shipped"); err == nil {
		t.Error("expected error for unknown status")
	}
	if err := db.SetProposalStatus(ctx, "no-such-id", StatusApproved); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestListProposalsStatusFilter(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	a, _ := db.SaveProposal(ctx, testDraft(), time.Now())
	db.SaveProposal(ctx, testDraft(), time.Now())
	db.SetProposalStatus(ctx, a.ID, StatusRejected)

	pending, err := db.ListProposals(ctx, StatusPending)
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1", len(pending))
	}

	if _, err := db.ListProposals(ctx, "bogus"); err == nil {
		t.Error("expected error for unknown status filter")
	}
}
