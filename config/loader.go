package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix marks the environment variables cyrus reads.
const envPrefix = "CYRUS_"

// Load reads configuration with the precedence (highest first):
//
//  1. CYRUS_* environment variables (CYRUS_RUNNER_TOOL, CYRUS_TEAM_THRESHOLD)
//  2. the YAML file at path, when it exists
//  3. hardcoded defaults
//
// An empty path skips the file layer entirely. Environment variables map to
// config keys by stripping the prefix, lowercasing, and splitting the first
// underscore into a section: CYRUS_RUNNER_MAX_CONCURRENT becomes
// runner.max_concurrent.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
