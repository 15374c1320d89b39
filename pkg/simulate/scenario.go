// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package simulate replays YAML scenarios against an engine running on a fake
// clock, an in-memory store and a fake activity backend.
package simulate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/common"
	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"

	"gopkg.in/yaml.v3"
)

const (
	AnswerCorrect   = "correct"
	AnswerIncorrect = "incorrect"

	// DefaultUserID is used when a scenario does not name a learner.
	DefaultUserID = "simulated-learner"
)

// Scenario is a scripted session.
type Scenario struct {
	Name     string    `yaml:"name"`
	UserID   string    `yaml:"user_id"`
	Start    time.Time `yaml:"start"`
	Timezone string    `yaml:"timezone"`
	// TodayResetsDaily defaults to true.
	TodayResetsDaily *bool   `yaml:"today_resets_daily"`
	Backend          Backend `yaml:"backend"`
	Steps            []Step  `yaml:"steps"`
}

// Backend seeds the fake activity backend.
type Backend struct {
	Offline bool         `yaml:"offline"`
	Streak  *StreakSeed `yaml:"streak"`
}

type StreakSeed struct {
	Current        int    `yaml:"current"`
	Longest        int    `yaml:"longest"`
	LastActiveDate string `yaml:"last_active_date"`
}

// Step holds exactly one action.
type Step struct {
	Answer  string        `yaml:"answer,omitempty"`
	Advance time.Duration `yaml:"advance,omitempty"`
	Refill  bool          `yaml:"refill,omitempty"`
	SyncXP  *int          `yaml:"sync_xp,omitempty"`
	Offline *bool         `yaml:"offline,omitempty"`
	Reset   bool          `yaml:"reset,omitempty"`
	Expect  *Expect       `yaml:"expect,omitempty"`
}

// Expect lists the snapshot fields to check; unset fields are not checked.
type Expect struct {
	Hearts          *int           `yaml:"hearts"`
	TimeUntilRefill *time.Duration `yaml:"time_until_refill"`
	XPTotal         *int           `yaml:"xp_total"`
	TodayTotal      *int           `yaml:"today_total"`
	Level           *int           `yaml:"level"`
	ToNextLevel     *int           `yaml:"to_next_level"`
	Streak          *int           `yaml:"streak"`
	Longest         *int           `yaml:"longest"`
}

// LoadScenario reads a scenario file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	expanded := common.ExpandEnvVars(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("scenario is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML scenario: %w", err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// Validate checks the scenario for common errors.
func (s *Scenario) Validate() error {
	if s.Start.IsZero() {
		return errors.New("start is required")
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("unknown timezone %q: %w", s.Timezone, err)
		}
	}
	if seed := s.Backend.Streak; seed != nil {
		if seed.Current < 0 || seed.Longest < 0 {
			return errors.New("backend streak must not be negative")
		}
		if _, err := gamification.ParseDate(seed.LastActiveDate); err != nil {
			return fmt.Errorf("backend streak: %w", err)
		}
	}
	if len(s.Steps) == 0 {
		return errors.New("scenario has no steps")
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s Step) validate() error {
	actions := s.actions()
	switch len(actions) {
	case 0:
		return errors.New("no action")
	case 1:
	default:
		return fmt.Errorf("more than one action: %s", strings.Join(actions, ", "))
	}

	if s.Answer != "" && s.Answer != AnswerCorrect && s.Answer != AnswerIncorrect {
		return fmt.Errorf("answer must be %q or %q, got %q", AnswerCorrect, AnswerIncorrect, s.Answer)
	}
	if s.Advance < 0 {
		return fmt.Errorf("advance must not be negative, got %s", s.Advance)
	}
	if s.SyncXP != nil && *s.SyncXP < 0 {
		return fmt.Errorf("sync_xp must not be negative, got %d", *s.SyncXP)
	}
	return nil
}

// Action names the single action of the step.
func (s Step) Action() string {
	if actions := s.actions(); len(actions) == 1 {
		return actions[0]
	}
	return ""
}

func (s Step) actions() []string {
	var actions []string
	if s.Answer != "" {
		actions = append(actions, "answer")
	}
	if s.Advance != 0 {
		actions = append(actions, "advance")
	}
	if s.Refill {
		actions = append(actions, "refill")
	}
	if s.SyncXP != nil {
		actions = append(actions, "sync_xp")
	}
	if s.Offline != nil {
		actions = append(actions, "offline")
	}
	if s.Reset {
		actions = append(actions, "reset")
	}
	if s.Expect != nil {
		actions = append(actions, "expect")
	}
	return actions
}
