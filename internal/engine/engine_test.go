package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leavenlabs/leaven/internal/llm"
	"github.com/leavenlabs/leaven/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const proposalResponse = "I will adjust my tone.\n```json\n{\"proposal\":{\"type\":\"tension_adjustment\",\"reason\":\"User requested flexibility.\",\"action\":{\"foo\":\"bar\"}}}\n```"

func TestProcessTurnPersistsProposal(t *testing.T) {
	db := testDB(t)
	eng := New(db, db, nil)

	res, err := eng.ProcessTurn(context.Background(), proposalResponse)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if !strings.Contains(res.CleanText, "I will adjust my tone.") {
		t.Errorf("clean text = %q", res.CleanText)
	}
	if res.Proposal == nil {
		t.Fatal("expected a persisted proposal")
	}
	if res.Proposal.Status != store.StatusPending {
		t.Errorf("Status = %q, want pending", res.Proposal.Status)
	}
	if res.Proposal.ID == "" || res.Proposal.Timestamp == "" {
		t.Errorf("missing id or timestamp: %+v", res.Proposal)
	}

	pending, err := db.ListProposals(context.Background(), store.StatusPending)
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending count = %d, want 1", len(pending))
	}
}

func TestProcessTurnNoProposal(t *testing.T) {
	db := testDB(t)
	eng := New(db, db, nil)

	input := "Just a normal response."
	res, err := eng.ProcessTurn(context.Background(), input)
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.CleanText != input {
		t.Errorf("clean text = %q, want input unchanged", res.CleanText)
	}
	if res.Proposal != nil {
		t.Errorf("expected no proposal, got %+v", res.Proposal)
	}

	all, _ := db.ListProposals(context.Background(), "")
	if len(all) != 0 {
		t.Errorf("store not empty: %d proposals", len(all))
	}
}

// failingProposals simulates an unwritable backing store.
type failingProposals struct{}

func (failingProposals) SaveProposal(ctx context.Context, draft store.ProposalDraft, now time.Time) (*store.Proposal, error) {
	return nil, &store.StorageError{Op: "save proposal", Err: errors.New("disk full")}
}

func (failingProposals) ListProposals(ctx context.Context, status string) ([]store.Proposal, error) {
	return nil, nil
}

func (failingProposals) SetProposalStatus(ctx context.Context, id, status string) error {
	return nil
}

func TestProcessTurnStorageFailure(t *testing.T) {
	db := testDB(t)
	eng := New(failingProposals{}, db, nil)

	res, err := eng.ProcessTurn(context.Background(), proposalResponse)
	if err == nil {
		t.Fatal("expected a storage error")
	}
	var se *store.StorageError
	if !errors.As(err, &se) {
		t.Errorf("error = %v, want *store.StorageError", err)
	}

	// The turn still succeeds: clean text comes back, proposal does not.
	if !strings.Contains(res.CleanText, "I will adjust my tone.") {
		t.Errorf("clean text lost on storage failure: %q", res.CleanText)
	}
	if res.Proposal != nil {
		t.Errorf("proposal reported persisted despite failure: %+v", res.Proposal)
	}
}

func TestRunTurn(t *testing.T) {
	db := testDB(t)
	mock := &llm.MockClient{
		Response: &llm.Response{Content: proposalResponse, Provider: "mock"},
	}
	eng := New(db, db, mock)

	res, err := eng.RunTurn(context.Background(), "adjust your tone please")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Proposal == nil {
		t.Fatal("expected a persisted proposal")
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("LLM called %d times, want 1", len(mock.Calls))
	}
	if !strings.Contains(mock.Calls[0], "adjust your tone please") {
		t.Errorf("prompt not forwarded to backend: %q", mock.Calls[0])
	}
}

func TestRunTurnNoBackend(t *testing.T) {
	db := testDB(t)
	eng := New(db, db, nil)

	if _, err := eng.RunTurn(context.Background(), "hi"); err == nil {
		t.Fatal("expected error with no backend configured")
	}
}

func TestAssembleContext(t *testing.T) {
	db := testDB(t)
	eng := New(db, db, nil)
	ctx := context.Background()

	now := time.Now()
	if _, err := db.AddMemory(ctx, "old fact", "", now.Add(-72*time.Hour)); err != nil {
		t.Fatalf("AddMemory: %v", err)
	}
	if _, err := db.AddMemory(ctx, "fresh fact", "", now); err != nil {
		t.Fatalf("AddMemory: %v", err)
	}

	ranked, err := eng.AssembleContext(ctx, ContextOpts{})
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("len = %d, want 2", len(ranked))
	}
	if ranked[0].Entry.Content != "fresh fact" {
		t.Errorf("ranked[0] = %q, want the fresh entry", ranked[0].Entry.Content)
	}

	// The floor drops the three-day-old entry at the default half-life.
	floored, err := eng.AssembleContext(ctx, ContextOpts{MinWeight: 0.5})
	if err != nil {
		t.Fatalf("AssembleContext: %v", err)
	}
	if len(floored) != 1 || floored[0].Entry.Content != "fresh fact" {
		t.Errorf("floored = %+v, want only the fresh entry", floored)
	}
}
