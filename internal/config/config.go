// Package config loads settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/context-memory/internal/embedding"
	"github.com/rcliao/context-memory/internal/memory"
	"github.com/rcliao/context-memory/internal/priority"
)

// Environment variables read by Load.
const (
	EnvDB            = "CONTEXT_MEMORY_DB"
	EnvConfig        = "CONTEXT_MEMORY_CONFIG"
	EnvEmbedProvider = "CONTEXT_MEMORY_EMBED_PROVIDER"
	EnvEmbedModel    = "CONTEXT_MEMORY_EMBED_MODEL"
	EnvEmbedURL      = "CONTEXT_MEMORY_EMBED_URL"
	EnvVectorBackend = "CONTEXT_MEMORY_VECTOR_BACKEND"
	EnvOpenAIKey     = "OPENAI_API_KEY"
)

// Config is the full application configuration.
type Config struct {
	DBPath    string            `yaml:"db_path"`
	Memory    MemoryConfig      `yaml:"memory"`
	Priority  priority.Config   `yaml:"priority"`
	Embedding embedding.Options `yaml:"embedding"`
	Vector    VectorConfig      `yaml:"vector"`
	Insight   InsightConfig     `yaml:"insight"`
}

// MemoryConfig bounds the memory log.
type MemoryConfig struct {
	Capacity     int `yaml:"capacity"`
	PatternLimit int `yaml:"pattern_limit"`
}

// VectorConfig selects the vector index backend.
type VectorConfig struct {
	Backend string `yaml:"backend"` // "linear" or "hnsw"
	TopK    int    `yaml:"top_k"`
}

// InsightConfig tunes the frequency learner.
type InsightConfig struct {
	MinOccurrences int `yaml:"min_occurrences"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath: DefaultDBPath(),
		Memory: MemoryConfig{
			Capacity:     memory.DefaultCapacity,
			PatternLimit: memory.DefaultPatternLimit,
		},
		Priority: priority.DefaultConfig(),
		Vector:   VectorConfig{Backend: "linear", TopK: 5},
		Insight:  InsightConfig{MinOccurrences: 3},
	}
}

// DefaultDBPath is ~/.context-memory/memory.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".context-memory", "memory.db")
}

// DefaultConfigPath is ~/.context-memory/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".context-memory", "config.yaml")
}

// Load builds a Config. An explicit path must exist; with an empty path
// $CONTEXT_MEMORY_CONFIG and then DefaultConfigPath are tried if present.
// envFiles default to ".env"; missing env files are ignored, and values in
// them never override variables already set.
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()

	required := path != ""
	if path == "" {
		path = os.Getenv(EnvConfig)
		required = path != ""
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case required || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DBPath, EnvDB)
	set(&c.Vector.Backend, EnvVectorBackend)

	env := embedding.OptionsFromEnv()
	for dst, v := range map[*string]string{
		&c.Embedding.Provider: env.Provider,
		&c.Embedding.Model:    env.Model,
		&c.Embedding.BaseURL:  env.BaseURL,
		&c.Embedding.APIKey:   env.APIKey,
	} {
		if v != "" {
			*dst = v
		}
	}
}

// Validate checks limits and enumerations.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.Memory.Capacity <= 0 {
		return errors.New("memory.capacity must be > 0")
	}
	if c.Memory.PatternLimit <= 0 {
		return errors.New("memory.pattern_limit must be > 0")
	}
	if err := c.Priority.Validate(); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	switch c.Embedding.Provider {
	case "", "openai", "ollama", "hash":
	default:
		return fmt.Errorf("embedding.provider %q is not one of openai, ollama, hash", c.Embedding.Provider)
	}
	switch c.Vector.Backend {
	case "linear", "hnsw":
	default:
		return fmt.Errorf("vector.backend %q is not one of linear, hnsw", c.Vector.Backend)
	}
	if c.Vector.TopK <= 0 {
		return errors.New("vector.top_k must be > 0")
	}
	return nil
}

// MemoryOptions converts the memory section for memory.New.
func (c *Config) MemoryOptions() memory.Options {
	return memory.Options{
		Capacity:     c.Memory.Capacity,
		PatternLimit: c.Memory.PatternLimit,
	}
}
