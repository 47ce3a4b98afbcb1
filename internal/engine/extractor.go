package engine

import (
	"encoding/json"
	"strings"

	"github.com/leavenlabs/leaven/internal/store"
)

const (
	jsonFenceOpen = "```json"
	fenceClose    = "```"
)

// ExtractProposal separates a model response into conversational prose and an
// optional embedded change proposal. It scans for fenced ```json blocks; the
// first block whose JSON object carries a top-level "proposal" key wins, and
// any other fenced blocks stay in the clean text untouched.
//
// Extraction is best-effort and never fails: a missing block, malformed JSON,
// absent "proposal" key, or an invalid proposal shape all degrade to
// returning the input unchanged with a nil draft.
func ExtractProposal(responseText string) (string, *store.ProposalDraft) {
	pos := 0
	for {
		rel := strings.Index(responseText[pos:], jsonFenceOpen)
		if rel < 0 {
			return responseText, nil
		}
		open := pos + rel
		bodyStart := open + len(jsonFenceOpen)

		relClose := strings.Index(responseText[bodyStart:], fenceClose)
		if relClose < 0 {
			// Unterminated fence — nothing more to scan
			return responseText, nil
		}
		bodyEnd := bodyStart + relClose
		blockEnd := bodyEnd + len(fenceClose)

		draft := parseProposalBlock(responseText[bodyStart:bodyEnd])
		if draft == nil {
			pos = blockEnd
			continue
		}

		// Remove the winning block, fences included, keeping all other
		// prose in its original order.
		clean := strings.TrimSpace(responseText[:open] + responseText[blockEnd:])
		return clean, draft
	}
}

// parseProposalBlock parses the contents of a fenced JSON block and returns
// the proposal draft it carries, or nil if the block isn't a valid proposal.
// Top-level keys other than "proposal" are ignored.
func parseProposalBlock(body string) *store.ProposalDraft {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil
	}

	raw, ok := payload["proposal"]
	if !ok {
		return nil
	}

	var draft store.ProposalDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil
	}

	// Required-field presence only; type is an open-ended category and the
	// internal shape of action is deliberately not validated.
	if strings.TrimSpace(draft.Type) == "" || strings.TrimSpace(draft.Reason) == "" {
		return nil
	}
	if draft.Action == nil {
		return nil
	}
	return &draft
}
