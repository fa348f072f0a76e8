// Package config loads application configuration from file and
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Research ResearchConfig `mapstructure:"research"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	EmbedModel        string        `mapstructure:"embed_model"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	BackoffBase       time.Duration `mapstructure:"backoff_base"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Temperature       float64       `mapstructure:"temperature"`
}

type DedupConfig struct {
	// Backend selects the corpus index: "memory", "qdrant" or
	// "pgvector".
	Backend    string         `mapstructure:"backend"`
	Threshold  float64        `mapstructure:"threshold"`
	Dimensions int            `mapstructure:"dimensions"`
	Qdrant     QdrantConfig   `mapstructure:"qdrant"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ScoringConfig struct {
	MinSources    int `mapstructure:"min_sources"`
	MinWordCount  int `mapstructure:"min_word_count"`
	MetaDescMin   int `mapstructure:"meta_desc_min"`
	MetaDescMax   int `mapstructure:"meta_desc_max"`
	MaxIntroLines int `mapstructure:"max_intro_lines"`
}

type PipelineConfig struct {
	Workers  int           `mapstructure:"workers"`
	Deadline time.Duration `mapstructure:"deadline"`
}

type ResearchConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxSources int  `mapstructure:"max_sources"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Environment  string  `mapstructure:"environment"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			RequestTimeout: 90 * time.Second,
			MaxAttempts:    3,
			BackoffBase:    2 * time.Second,
			Temperature:    0.7,
		},
		Dedup: DedupConfig{
			Backend:    "memory",
			Threshold:  0.85,
			Dimensions: 1536,
			Qdrant:     QdrantConfig{Host: "localhost", Port: 6334, Collection: "geogate_corpus"},
		},
		Scoring: ScoringConfig{
			MinSources:    3,
			MinWordCount:  300,
			MetaDescMin:   150,
			MetaDescMax:   160,
			MaxIntroLines: 5,
		},
		Pipeline: PipelineConfig{Workers: 3},
		Research: ResearchConfig{MaxSources: 5},
		Tracing:  TracingConfig{SampleRate: 1.0, Environment: "development"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.LLM.Provider != "" && c.LLM.Provider != "mock" && c.LLM.APIKey == "" {
		warnings = append(warnings, fmt.Sprintf("LLM provider %q is configured but api_key is empty", c.LLM.Provider))
	}
	if c.Dedup.Threshold <= 0 || c.Dedup.Threshold > 1 {
		warnings = append(warnings, fmt.Sprintf("dedup threshold %.2f is outside (0, 1]", c.Dedup.Threshold))
	}
	if c.LLM.MaxAttempts < 1 {
		warnings = append(warnings, fmt.Sprintf("llm max_attempts %d leaves no attempts", c.LLM.MaxAttempts))
	}
	if c.Pipeline.Workers < 1 {
		warnings = append(warnings, fmt.Sprintf("pipeline workers %d, forcing sequential mode", c.Pipeline.Workers))
	}

	return warnings
}

// Load reads configuration from file and environment. A missing file
// is not an error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("GEOGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return cfg, nil
}
