// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package reward grants platform items when a learner reaches configured levels.
package reward

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matuskalis/speaksharp-gamification/pkg/common"

	"gopkg.in/yaml.v3"
)

// Config is the rewards file.
type Config struct {
	Rewards []LevelReward `yaml:"rewards"`
}

// LevelReward grants ItemID at one level (Level) or at every multiple of Every.
type LevelReward struct {
	ID       string `yaml:"id"`
	Level    int    `yaml:"level"`
	Every    int    `yaml:"every"`
	ItemID   string `yaml:"item_id"`
	Quantity int    `yaml:"quantity"`
	Enabled  *bool  `yaml:"enabled"`
}

// IsEnabled reports whether the reward is active. Rewards are enabled unless disabled explicitly.
func (r LevelReward) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Matches reports whether reaching level earns this reward.
func (r LevelReward) Matches(level int) bool {
	if r.Level > 0 {
		return level == r.Level
	}
	return r.Every > 0 && level%r.Every == 0
}

// LoadConfig reads a rewards file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rewards file %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a rewards document.
func ParseConfig(data []byte) (*Config, error) {
	expanded := common.ExpandEnvVars(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML rewards: %w", err)
	}

	for i := range cfg.Rewards {
		if cfg.Rewards[i].Quantity == 0 {
			cfg.Rewards[i].Quantity = 1
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rewards: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Rewards))
	for i, r := range c.Rewards {
		if r.ID == "" {
			return fmt.Errorf("reward %d: id is required", i+1)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate reward id: %s", r.ID)
		}
		seen[r.ID] = true

		if r.ItemID == "" {
			return fmt.Errorf("reward %s: item_id is required", r.ID)
		}
		if r.Quantity < 1 {
			return fmt.Errorf("reward %s: quantity must be positive", r.ID)
		}
		switch {
		case r.Level > 0 && r.Every > 0:
			return fmt.Errorf("reward %s: set either level or every, not both", r.ID)
		case r.Level < 0 || r.Every < 0:
			return fmt.Errorf("reward %s: level and every must not be negative", r.ID)
		case r.Level == 0 && r.Every == 0:
			return fmt.Errorf("reward %s: level or every is required", r.ID)
		case r.Level == 1 || r.Every == 1:
			return fmt.Errorf("reward %s: learners start at level 1, use level 2 or above", r.ID)
		}
	}
	return nil
}

// ForLevel returns the enabled rewards earned by reaching level.
func (c *Config) ForLevel(level int) []LevelReward {
	var out []LevelReward
	for _, r := range c.Rewards {
		if r.IsEnabled() && r.Matches(level) {
			out = append(out, r)
		}
	}
	return out
}
