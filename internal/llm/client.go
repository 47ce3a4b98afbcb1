package llm

import (
	"context"
	"fmt"

	"github.com/leavenlabs/leaven/internal/config"
)

// Client is the interface for generation backends. The engine's only
// dependency on a backend is "produces response text to extract from".
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// SchemaClient is implemented by backends that support JSON-Schema
// constrained generation.
type SchemaClient interface {
	Client
	CompleteSchema(ctx context.Context, prompt string, schema map[string]any) (*Response, error)
}

// Response holds the result of a completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// NewClient creates a generation client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	case "outlines":
		url := cfg.OutlinesURL
		if url == "" {
			url = "http://localhost:6789"
		}
		model := cfg.Model
		if model == "" {
			model = "mistral:7b-instruct"
		}
		return NewOutlines(url, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
