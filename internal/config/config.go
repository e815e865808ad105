// Package config loads engine tuning parameters. Scoring weights are
// empirically chosen constants, so they are configurable through an optional
// YAML file rather than baked in.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable naming the optional config file.
const EnvConfigPath = "TRIPSEARCH_CONFIG"

// Scoring holds the additive signal weights used by the trip surface scorer.
type Scoring struct {
	SlugExact          float64 `yaml:"slug_exact"`
	TripIDExact        float64 `yaml:"trip_id_exact"`
	PrimaryEmailExact  float64 `yaml:"primary_email_exact"`
	TravelerEmailSub   float64 `yaml:"traveler_email_substring"`
	SearchToken        float64 `yaml:"search_token"`
	PhoneticToken      float64 `yaml:"phonetic_token"`
	NameNormalized     float64 `yaml:"name_normalized"`
	Destination        float64 `yaml:"destination"`
	TravelerName       float64 `yaml:"traveler_name"`
	EmailNormalized    float64 `yaml:"email_normalized"`
	PrimaryClientName  float64 `yaml:"primary_client_name"`
	NameRawPartial     float64 `yaml:"name_raw_partial"`
	ConfirmedBonus     float64 `yaml:"confirmed_bonus"`
	TravelerCountCap   int     `yaml:"traveler_count_cap"`
	SemanticMultiBonus float64 `yaml:"semantic_multi_bonus"`
}

// Limits bounds result and candidate set sizes.
type Limits struct {
	MaxTerms       int `yaml:"max_terms"`
	CandidatePool  int `yaml:"candidate_pool"`
	DefaultResults int `yaml:"default_results"`
	MaxResults     int `yaml:"max_results"`
}

// Budgets holds soft latency thresholds for the fallback tiers.
type Budgets struct {
	TierWarn time.Duration `yaml:"tier_warn"`
}

// Config is the full engine configuration.
type Config struct {
	Scoring Scoring `yaml:"scoring"`
	Limits  Limits  `yaml:"limits"`
	Budgets Budgets `yaml:"budgets"`
}

// Default returns the built-in configuration. The scoring values mirror the
// observed production constants.
func Default() *Config {
	return &Config{
		Scoring: Scoring{
			SlugExact:          160,
			TripIDExact:        140,
			PrimaryEmailExact:  120,
			TravelerEmailSub:   80,
			SearchToken:        22,
			PhoneticToken:      14,
			NameNormalized:     12,
			Destination:        10,
			TravelerName:       9,
			EmailNormalized:    7,
			PrimaryClientName:  6,
			NameRawPartial:     6,
			ConfirmedBonus:     3,
			TravelerCountCap:   5,
			SemanticMultiBonus: 0.5,
		},
		Limits: Limits{
			MaxTerms:       3,
			CandidatePool:  25,
			DefaultResults: 5,
			MaxResults:     25,
		},
		Budgets: Budgets{
			TierWarn: 400 * time.Millisecond,
		},
	}
}

// Load reads the config file at path and overlays it on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by TRIPSEARCH_CONFIG, or the defaults when the
// variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Limits.MaxTerms < 1 {
		return fmt.Errorf("limits.max_terms must be >= 1, got %d", c.Limits.MaxTerms)
	}
	if c.Limits.CandidatePool < 1 {
		return fmt.Errorf("limits.candidate_pool must be >= 1, got %d", c.Limits.CandidatePool)
	}
	if c.Limits.DefaultResults < 1 || c.Limits.DefaultResults > c.Limits.MaxResults {
		return fmt.Errorf("limits.default_results must be in [1, %d], got %d",
			c.Limits.MaxResults, c.Limits.DefaultResults)
	}
	return nil
}
