// Package config loads echo's configuration from an optional YAML file with
// environment variable overrides. Scoring constants are configuration, not
// code: the fusion weights and decay window can be tuned without touching
// the engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/echo-systems/echo/internal/recommender"
	"github.com/echo-systems/echo/internal/suggest"
)

// Config holds all configuration for echo. Values come from
// {config-dir}/config.yaml when present; environment variables always
// override YAML values. The API key must only come from the environment.
type Config struct {
	DBPath string `yaml:"db_path" env:"ECHO_DB_PATH" env-default:""`

	Scoring ScoringConfig `yaml:"scoring"`
	Backend BackendConfig `yaml:"backend"`
}

// ScoringConfig exposes the recommender's tunable constants.
type ScoringConfig struct {
	SimilarityWeight    float64 `yaml:"similarity_weight" env:"ECHO_SIMILARITY_WEIGHT" env-default:"0.5"`
	AIWeight            float64 `yaml:"ai_weight" env:"ECHO_AI_WEIGHT" env-default:"0.6"`
	DecayHalfLifeDays   float64 `yaml:"decay_half_life_days" env:"ECHO_DECAY_HALF_LIFE_DAYS" env-default:"30"`
	TopN                int     `yaml:"top_n" env:"ECHO_TOP_N" env-default:"20"`
	Limit               int     `yaml:"limit" env:"ECHO_LIMIT" env-default:"10"`
	FailureCooldownDays float64 `yaml:"failure_cooldown_days" env:"ECHO_FAILURE_COOLDOWN_DAYS" env-default:"7"`
}

// BackendConfig holds the suggestion backend connection settings. An empty
// endpoint disables the AI signal entirely; runs are then similarity-only.
type BackendConfig struct {
	Endpoint       string `yaml:"endpoint" env:"ECHO_BACKEND_ENDPOINT" env-default:""`
	Model          string `yaml:"model" env:"ECHO_BACKEND_MODEL" env-default:"gpt-4o-mini"`
	APIKey         string `yaml:"-" env:"ECHO_BACKEND_API_KEY"` // secret, env only
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"ECHO_BACKEND_TIMEOUT_SECONDS" env-default:"30"`
}

// Dir returns the echo config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/echo if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "echo"), nil
}

// Load reads configuration from {Dir()}/config.yaml when the file exists,
// then applies environment overrides. A missing file is not an error; the
// defaults plus environment are used.
func Load() (*Config, error) {
	var cfg Config

	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}
	return &cfg, nil
}

// Recommender converts the scoring section into the engine's Config,
// falling back to engine defaults for anything non-positive.
func (c *Config) Recommender() recommender.Config {
	rc := recommender.DefaultConfig()

	if c.Scoring.SimilarityWeight > 0 {
		rc.WeightSimilarity = c.Scoring.SimilarityWeight
	}
	if c.Scoring.AIWeight > 0 {
		rc.WeightAI = c.Scoring.AIWeight
	}
	if c.Scoring.DecayHalfLifeDays > 0 {
		rc.DecayHalfLife = time.Duration(c.Scoring.DecayHalfLifeDays * 24 * float64(time.Hour))
	}
	if c.Scoring.TopN > 0 {
		rc.TopN = c.Scoring.TopN
	}
	if c.Scoring.Limit > 0 {
		rc.Limit = c.Scoring.Limit
	}
	if c.Scoring.FailureCooldownDays > 0 {
		rc.FailureCooldown = time.Duration(c.Scoring.FailureCooldownDays * 24 * float64(time.Hour))
	}
	if c.Backend.TimeoutSeconds > 0 {
		rc.BackendTimeout = time.Duration(c.Backend.TimeoutSeconds) * time.Second
	}
	return rc
}

// Suggest converts the backend section into the client's Config.
func (c *Config) Suggest() suggest.Config {
	return suggest.Config{
		Endpoint: c.Backend.Endpoint,
		Model:    c.Backend.Model,
		APIKey:   c.Backend.APIKey,
	}
}

// BackendEnabled reports whether a suggestion backend is configured.
func (c *Config) BackendEnabled() bool {
	return c.Backend.Endpoint != ""
}
