// Package config provides configuration loading for cyrus: hardcoded
// defaults, overridden by a YAML file, overridden by CYRUS_* environment
// variables.
package config

import (
	"fmt"
	"time"
)

// Config is the full cyrusd configuration tree.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Runner     RunnerConfig     `koanf:"runner"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Team       TeamConfig       `koanf:"team"`
	Session    SessionConfig    `koanf:"session"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "text".
	Format string `koanf:"format"`
	// AddSource includes file:line in every record.
	AddSource bool `koanf:"add_source"`
}

// RunnerConfig selects and tunes the agent subprocess runner.
type RunnerConfig struct {
	// Tool is the agent CLI to drive: "claude" or "codex".
	Tool string `koanf:"tool"`
	// Binary overrides the executable path. Empty means the tool name.
	Binary string `koanf:"binary"`
	// Timeout bounds each invocation's wait for a terminal event.
	Timeout time.Duration `koanf:"timeout"`
	// GracePeriod is the SIGTERM-to-SIGKILL window on stop.
	GracePeriod time.Duration `koanf:"grace_period"`
	// AllowedTools restricts the agent's tool surface, if supported.
	AllowedTools []string `koanf:"allowed_tools"`
	// MaxConcurrent bounds concurrent invocations. Zero is unlimited.
	MaxConcurrent int `koanf:"max_concurrent"`
}

// ClassifierConfig selects how new work is bucketed for routing.
type ClassifierConfig struct {
	// Provider is "keyword", "anthropic" or "openai". The keyword
	// classifier is deterministic and needs no credentials; the LLM
	// providers read their API keys from the standard SDK environment
	// variables.
	Provider string `koanf:"provider"`
	// Model overrides the provider's default model id. Ignored by the
	// keyword provider.
	Model string `koanf:"model"`
}

// TeamConfig tunes the complexity gate for team decomposition.
type TeamConfig struct {
	// Threshold is the minimum complexity score for a team.
	Threshold int `koanf:"threshold"`
	// Keywords overrides the complexity marker set.
	Keywords []string `koanf:"keywords"`
}

// SessionConfig tunes session bookkeeping.
type SessionConfig struct {
	// WorkspaceRoot is where per-issue workspaces are created.
	WorkspaceRoot string `koanf:"workspace_root"`
	// EvictAfter is how long terminal sessions linger before eviction.
	EvictAfter time.Duration `koanf:"evict_after"`
	// HistoryLimit caps how many trailing entries are rendered into prompts.
	HistoryLimit int `koanf:"history_limit"`
}

// applyDefaults fills zero values with production defaults.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Runner.Tool == "" {
		cfg.Runner.Tool = "claude"
	}
	if cfg.Runner.Timeout == 0 {
		cfg.Runner.Timeout = 30 * time.Minute
	}
	if cfg.Runner.GracePeriod == 0 {
		cfg.Runner.GracePeriod = 5 * time.Second
	}
	if cfg.Runner.MaxConcurrent == 0 {
		cfg.Runner.MaxConcurrent = 10
	}
	if cfg.Classifier.Provider == "" {
		cfg.Classifier.Provider = "keyword"
	}
	if cfg.Team.Threshold == 0 {
		cfg.Team.Threshold = 60
	}
	if cfg.Session.EvictAfter == 0 {
		cfg.Session.EvictAfter = 24 * time.Hour
	}
	if cfg.Session.HistoryLimit == 0 {
		cfg.Session.HistoryLimit = 20
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	switch c.Runner.Tool {
	case "claude", "codex":
	default:
		return fmt.Errorf("runner.tool must be \"claude\" or \"codex\", got %q", c.Runner.Tool)
	}
	switch c.Classifier.Provider {
	case "keyword", "anthropic", "openai":
	default:
		return fmt.Errorf("classifier.provider must be \"keyword\", \"anthropic\" or \"openai\", got %q", c.Classifier.Provider)
	}
	if c.Team.Threshold < 0 || c.Team.Threshold > 100 {
		return fmt.Errorf("team.threshold must be between 0 and 100, got %d", c.Team.Threshold)
	}
	if c.Runner.MaxConcurrent < 0 {
		return fmt.Errorf("runner.max_concurrent must not be negative, got %d", c.Runner.MaxConcurrent)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"text\", got %q", c.Logging.Format)
	}
	return nil
}
