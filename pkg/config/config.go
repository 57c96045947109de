// Package config loads rule generation settings from YAML or JSON files
// and applies per-request overrides.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/rulesmith/internal/mutation"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/weighted"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string ("5s", "250ms").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SearchConfig points at the index service.
type SearchConfig struct {
	URL       string   `yaml:"url" json:"url" mapstructure:"url"`
	Timeout   Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	RateLimit float64  `yaml:"rate_limit" json:"rate_limit" mapstructure:"rate_limit"`
	Burst     int      `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// RedisConfig enables the search result cache when Addr is set.
type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr" mapstructure:"addr"`
	Password string   `yaml:"password" json:"password" mapstructure:"password"`
	DB       int      `yaml:"db" json:"db" mapstructure:"db"`
	TTL      Duration `yaml:"ttl" json:"ttl" mapstructure:"ttl"`
	Prefix   string   `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
}

// CorpusConfig locates the sharded document files.
type CorpusConfig struct {
	DocsDir     string   `yaml:"docs_dir" json:"docs_dir" mapstructure:"docs_dir"`
	LookupTable string   `yaml:"lookup_table" json:"lookup_table" mapstructure:"lookup_table"`
	CacheTTL    Duration `yaml:"cache_ttl" json:"cache_ttl" mapstructure:"cache_ttl"`
}

// Config is the full set of generation settings.
type Config struct {
	MaxSpanLength     int      `yaml:"max_span_length" json:"max_span_length" mapstructure:"max_span_length"`
	NumMatches        int      `yaml:"num_matches" json:"num_matches" mapstructure:"num_matches"`
	MinSentenceTokens int      `yaml:"min_sentence_tokens" json:"min_sentence_tokens" mapstructure:"min_sentence_tokens"`
	MaxIterations     int      `yaml:"max_iterations" json:"max_iterations" mapstructure:"max_iterations"`
	MaxDepth          int      `yaml:"max_depth" json:"max_depth" mapstructure:"max_depth"`
	Deadline          Duration `yaml:"deadline" json:"deadline" mapstructure:"deadline"`
	Seed              int64    `yaml:"seed" json:"seed" mapstructure:"seed"`
	NumQueries        int      `yaml:"num_queries" json:"num_queries" mapstructure:"num_queries"`
	Workers           int      `yaml:"workers" json:"workers" mapstructure:"workers"`
	OutDir            string   `yaml:"out_dir" json:"out_dir" mapstructure:"out_dir"`

	Fields            map[string]float64 `yaml:"fields" json:"fields" mapstructure:"fields"`
	ConstraintActions map[string]float64 `yaml:"constraint_actions" json:"constraint_actions" mapstructure:"constraint_actions"`
	SurfaceActions    map[string]float64 `yaml:"surface_actions" json:"surface_actions" mapstructure:"surface_actions"`
	Quantifiers       map[string]float64 `yaml:"quantifiers" json:"quantifiers" mapstructure:"quantifiers"`

	Search SearchConfig `yaml:"search" json:"search" mapstructure:"search"`
	Redis  RedisConfig  `yaml:"redis" json:"redis" mapstructure:"redis"`
	Corpus CorpusConfig `yaml:"corpus" json:"corpus" mapstructure:"corpus"`
}

// Default returns the stock settings.
func Default() Config {
	m := mutation.DefaultConfig()
	return Config{
		MaxSpanLength:     m.MaxSpanLength,
		NumMatches:        m.NumMatches,
		MinSentenceTokens: m.MinSentenceTokens,
		MaxIterations:     m.MaxIterations,
		MaxDepth:          m.MaxDepth,
		Deadline:          Duration(5 * time.Second),
		NumQueries:        10,
		Workers:           1,
		OutDir:            "out",
		Fields:            m.Fields,
		ConstraintActions: m.ConstraintActions,
		SurfaceActions:    m.SurfaceActions,
		Quantifiers:       m.Quantifiers,
		Search: SearchConfig{
			URL:       "http://localhost:9000",
			Timeout:   Duration(10 * time.Second),
			RateLimit: 50,
			Burst:     10,
		},
		Redis: RedisConfig{
			TTL:    Duration(time.Hour),
			Prefix: "rulesmith:search:",
		},
		Corpus: CorpusConfig{
			CacheTTL: Duration(5 * time.Minute),
		},
	}
}

// Load reads a YAML or JSON file (chosen by extension) over the defaults.
// A weight table present in the file replaces the default table entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	defaults := []map[string]float64{cfg.Fields, cfg.ConstraintActions, cfg.SurfaceActions, cfg.Quantifiers}
	cfg.Fields, cfg.ConstraintActions, cfg.SurfaceActions, cfg.Quantifiers = nil, nil, nil, nil

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	for i, t := range cfg.tables() {
		if *t == nil {
			*t = defaults[i]
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, filepath.Base(path), err)
	}
	return cfg, nil
}

func (c *Config) tables() []*map[string]float64 {
	return []*map[string]float64{&c.Fields, &c.ConstraintActions, &c.SurfaceActions, &c.Quantifiers}
}

// Clone returns a copy whose weight tables can be changed independently.
func (c Config) Clone() Config {
	for _, t := range c.tables() {
		*t = maps.Clone(*t)
	}
	return c
}

// Decode applies overrides such as a JSON request body onto cfg.
// Keys follow the file format; weight tables merge key by key.
func Decode(overrides map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(overrides); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return nil
}

// Engine returns the mutation engine settings.
func (c Config) Engine() mutation.Config {
	return mutation.Config{
		MaxSpanLength:     c.MaxSpanLength,
		NumMatches:        c.NumMatches,
		MinSentenceTokens: c.MinSentenceTokens,
		MaxIterations:     c.MaxIterations,
		MaxDepth:          c.MaxDepth,
		Fields:            weighted.Table(c.Fields),
		ConstraintActions: weighted.Table(c.ConstraintActions),
		SurfaceActions:    weighted.Table(c.SurfaceActions),
		Quantifiers:       weighted.Table(c.Quantifiers),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return err
	}
	switch {
	case c.Deadline <= 0:
		return fmt.Errorf("deadline must be positive, got %s", c.Deadline.Std())
	case c.NumQueries < 0:
		return fmt.Errorf("num queries must not be negative, got %d", c.NumQueries)
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.Search.RateLimit < 0:
		return fmt.Errorf("search rate limit must not be negative, got %v", c.Search.RateLimit)
	}
	return nil
}
