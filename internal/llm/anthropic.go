package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// Anthropic calls the Anthropic Messages API directly.
type Anthropic struct {
	apiKey string
	model  string
	client *http.Client
}

// NewAnthropic creates a new Anthropic API client.
func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Complete sends a prompt to the Anthropic API.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (*Response, error) {
	reqBody := map[string]any{
		"model":       a.model,
		"max_tokens":  2048,
		"temperature": 0.3,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := postJSON(ctx, a.client, anthropicAPI, headers, reqBody, &result); err != nil {
		return nil, fmt.Errorf("anthropic api: %w", err)
	}

	if len(result.Content) == 0 {
		return nil, fmt.Errorf("anthropic api: empty content")
	}

	return &Response{
		Content:    result.Content[0].Text,
		Provider:   "anthropic",
		TokensUsed: result.Usage.OutputTokens,
	}, nil
}
