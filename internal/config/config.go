package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all leaven configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Proposals ProposalsConfig `yaml:"proposals"`
	Memory    MemoryConfig    `yaml:"memory"`
	LLM       LLMConfig       `yaml:"llm"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ProposalsConfig struct {
	Backend string `yaml:"backend"` // "sqlite" or "file"
	Path    string `yaml:"path"`    // JSON document path for the file backend
}

type MemoryConfig struct {
	HalfLifeDays float64 `yaml:"half_life_days"`
	MinWeight    float64 `yaml:"min_weight"`
	MaxEntries   int     `yaml:"max_entries"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider"` // "anthropic", "ollama", "outlines"
	Model        string `yaml:"model"`
	OllamaURL    string `yaml:"ollama_url"`
	OutlinesURL  string `yaml:"outlines_url"`
	AnthropicKey string `yaml:"anthropic_key"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37878,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Proposals: ProposalsConfig{
			Backend: "sqlite",
		},
		Memory: MemoryConfig{
			HalfLifeDays: 1.0,
			MinWeight:    0.0,
			MaxEntries:   0,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "",
		},
	}
}

// DefaultPath returns the default config location: ~/.leaven/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".leaven", "config.yaml"), nil
}

// Load reads the config file at path, layering it over the defaults.
// A missing file is not an error — the defaults stand.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
