package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leavenlabs/leaven/internal/engine"
)

// turnTimeout bounds the store I/O behind a turn; the backing store is an
// external resource and must not hang the conversation.
const turnTimeout = 10 * time.Second

// generateTimeout bounds a full generation round-trip.
const generateTimeout = 120 * time.Second

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResponseText string `json:"response_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ResponseText == "" {
		writeError(w, http.StatusBadRequest, "response_text required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()

	res, err := s.engine.ProcessTurn(ctx, req.ResponseText)

	// A save failure must not fail the turn: return the clean text either
	// way and surface the failure in the payload (it is also logged).
	out := map[string]any{
		"clean_text": res.CleanText,
		"saved":      res.Proposal != nil,
	}
	if res.Proposal != nil {
		out["proposal"] = res.Proposal
	}
	if err != nil {
		log.Printf("turn: proposal not recorded: %v", err)
		out["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt required")
		return
	}
	if s.engine.LLM == nil {
		writeError(w, http.StatusServiceUnavailable, "no generation backend configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()

	res, err := s.engine.RunTurn(ctx, req.Prompt)
	if err != nil && res.CleanText == "" {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	out := map[string]any{
		"clean_text": res.CleanText,
		"saved":      res.Proposal != nil,
	}
	if res.Proposal != nil {
		out["proposal"] = res.Proposal
	}
	if err != nil {
		log.Printf("generate: proposal not recorded: %v", err)
		out["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	proposals, err := s.engine.Proposals.ListProposals(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(proposals),
		"proposals": proposals,
	})
}

// handleReview returns a handler that transitions a pending proposal to the
// given status.
func (s *Server) handleReview(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "proposalID")

		if err := s.engine.Proposals.SetProposalStatus(r.Context(), id, status); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": status})
	}
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	opts := engine.ContextOpts{}

	if v := r.URL.Query().Get("half_life_days"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			opts.HalfLifeDays = f
		}
	}
	if v := r.URL.Query().Get("min_weight"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			opts.MinWeight = f
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxEntries = n
		}
	}

	ranked, err := s.engine.AssembleContext(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(ranked),
		"memories": ranked,
	})
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content   string `json:"content"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content required")
		return
	}

	entry, err := s.engine.Remember(r.Context(), req.Content, req.SessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
