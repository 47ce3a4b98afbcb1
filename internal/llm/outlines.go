package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Outlines calls a constrained-generation sidecar (an outlines.dev wrapper
// over Ollama). It accepts a prompt plus an optional JSON Schema and returns
// output conforming to the schema when one is given.
type Outlines struct {
	url    string
	model  string
	client *http.Client
}

// NewOutlines creates a client for the outlines sidecar at url.
func NewOutlines(url, model string) *Outlines {
	return &Outlines{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Complete sends an unconstrained prompt to the sidecar's chat endpoint.
func (o *Outlines) Complete(ctx context.Context, prompt string) (*Response, error) {
	return o.chat(ctx, prompt, nil)
}

// CompleteSchema sends a prompt with a JSON Schema constraint. The sidecar
// guarantees the output parses against the schema.
func (o *Outlines) CompleteSchema(ctx context.Context, prompt string, schema map[string]any) (*Response, error) {
	if schema == nil {
		return nil, fmt.Errorf("outlines: nil schema")
	}
	return o.chat(ctx, prompt, schema)
}

func (o *Outlines) chat(ctx context.Context, prompt string, schema map[string]any) (*Response, error) {
	reqBody := map[string]any{
		"prompt": prompt,
		"model":  o.model,
	}
	if schema != nil {
		reqBody["schema"] = schema
	}

	var result struct {
		Output     json.RawMessage `json:"output"`
		TokensUsed int             `json:"tokens_used"`
	}
	if err := postJSON(ctx, o.client, o.url+"/chat", nil, reqBody, &result); err != nil {
		return nil, fmt.Errorf("outlines api: %w", err)
	}

	// Output is a plain string for unconstrained prompts and a JSON object
	// for schema-constrained ones; either way the engine consumes text.
	var text string
	if err := json.Unmarshal(result.Output, &text); err != nil {
		text = string(result.Output)
	}

	return &Response{
		Content:    text,
		Provider:   "outlines",
		TokensUsed: result.TokensUsed,
	}, nil
}
