// Package config loads runtime settings from the environment. A local .env
// file is honored when present; every setting can also be overridden through
// RESUME_ENHANCER_* variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the full runtime configuration.
type Settings struct {
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	ScoreThreshold  int           `mapstructure:"score_threshold"`
	MappingAttempts int           `mapstructure:"mapping_attempts"`
	SectionAttempts int           `mapstructure:"section_attempts"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`

	DeltaInterval time.Duration `mapstructure:"delta_interval"`
	DeltaMinChars int           `mapstructure:"delta_min_chars"`

	LiteModel     string `mapstructure:"lite_model"`
	StandardModel string `mapstructure:"standard_model"`
	AdvancedModel string `mapstructure:"advanced_model"`

	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load reads settings from .env (if present) and the environment.
func Load() (*Settings, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RESUME_ENHANCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("api_key", "")
	v.SetDefault("score_threshold", 7)
	v.SetDefault("mapping_attempts", 1)
	v.SetDefault("section_attempts", 3)
	v.SetDefault("call_timeout", 15*time.Second)
	v.SetDefault("delta_interval", 250*time.Millisecond)
	v.SetDefault("delta_min_chars", 24)
	v.SetDefault("lite_model", "")
	v.SetDefault("standard_model", "")
	v.SetDefault("advanced_model", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks cross-field constraints. The API key is checked by the
// commands that need a live client, not here, so offline subcommands work
// without one.
func (s *Settings) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", s.Port)
	}
	if s.ScoreThreshold < 1 || s.ScoreThreshold > 10 {
		return fmt.Errorf("score_threshold must be in 1..10, got %d", s.ScoreThreshold)
	}
	if s.MappingAttempts < 1 {
		return fmt.Errorf("mapping_attempts must be at least 1, got %d", s.MappingAttempts)
	}
	if s.SectionAttempts < 1 {
		return fmt.Errorf("section_attempts must be at least 1, got %d", s.SectionAttempts)
	}
	if s.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive, got %s", s.CallTimeout)
	}
	return nil
}
