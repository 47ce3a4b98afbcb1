package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leavenlabs/leaven/internal/llm"
	"github.com/leavenlabs/leaven/internal/store"
)

// Engine wires the proposal extractor, the proposal store, and the memory
// ranker. Stores are injected interfaces so the engine runs unchanged against
// the SQLite store, the JSON file store, or a test fake.
type Engine struct {
	Proposals    store.ProposalStore
	Memories     store.MemoryStore
	LLM          llm.Client
	HalfLifeDays float64
}

// New creates an Engine with the default decay half-life.
func New(proposals store.ProposalStore, memories store.MemoryStore, client llm.Client) *Engine {
	return &Engine{
		Proposals:    proposals,
		Memories:     memories,
		LLM:          client,
		HalfLifeDays: DefaultHalfLifeDays,
	}
}

// TurnResult is what a processed turn hands back to the conversation loop.
type TurnResult struct {
	CleanText string
	Proposal  *store.Proposal
}

// ProcessTurn runs extraction over a raw model response and persists the
// embedded proposal, if any, as pending. A failed extraction is
// indistinguishable from "the model made no proposal". A failed save is
// logged and returned, but the clean text comes back regardless — the
// conversational turn must not fail because bookkeeping did.
func (e *Engine) ProcessTurn(ctx context.Context, responseText string) (TurnResult, error) {
	clean, draft := ExtractProposal(responseText)
	res := TurnResult{CleanText: clean}
	if draft == nil {
		return res, nil
	}

	saved, err := e.Proposals.SaveProposal(ctx, *draft, time.Now())
	if err != nil {
		log.Printf("proposals: save failed [%s]: %v", draft.Type, err)
		return res, err
	}

	log.Printf("proposals: recorded %s [%s]", saved.ID, saved.Type)
	res.Proposal = saved
	return res, nil
}

// RunTurn sends a prompt to the generation backend, then processes the
// response like any inbound turn. The backend stays behind llm.Client; the
// engine only consumes the text it produces.
func (e *Engine) RunTurn(ctx context.Context, prompt string) (TurnResult, error) {
	if e.LLM == nil {
		return TurnResult{}, fmt.Errorf("no generation backend configured")
	}

	resp, err := e.LLM.Complete(ctx, llm.TurnPrompt(prompt))
	if err != nil {
		return TurnResult{}, fmt.Errorf("generate: %w", err)
	}
	return e.ProcessTurn(ctx, resp.Content)
}

// Remember stores a memory entry with the current wall-clock time.
func (e *Engine) Remember(ctx context.Context, content, sourceSession string) (*store.MemoryEntry, error) {
	return e.Memories.AddMemory(ctx, content, sourceSession, time.Now())
}

// AssembleContext loads all memory entries and ranks them by decay weight as
// of now, applying the floor and cap from opts. Ranking is recomputed on
// every call; nothing here is cached.
func (e *Engine) AssembleContext(ctx context.Context, opts ContextOpts) ([]RankedMemory, error) {
	if opts.HalfLifeDays <= 0 {
		opts.HalfLifeDays = e.HalfLifeDays
	}

	entries, err := e.Memories.ListMemories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	ranked := RankMemories(entries, time.Now(), opts.HalfLifeDays)
	return filterRanked(ranked, opts), nil
}
