package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME at a temp dir and clears every variable Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{EnvDB, EnvConfig, EnvEmbedProvider, EnvEmbedModel, EnvEmbedURL, EnvVectorBackend, EnvOpenAIKey} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("", filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Memory.Capacity != 500 || cfg.Memory.PatternLimit != 2000 {
		t.Errorf("unexpected memory defaults %+v", cfg.Memory)
	}
	if cfg.Priority.MaxEntries != 5 || cfg.Priority.MaxContextLength != 2000 {
		t.Errorf("unexpected priority defaults %+v", cfg.Priority)
	}
	if cfg.Vector.Backend != "linear" || cfg.Embedding.Provider != "" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !strings.HasPrefix(cfg.DBPath, dir) {
		t.Errorf("expected db under HOME, got %s", cfg.DBPath)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
db_path: /tmp/cm.db
memory:
  capacity: 50
priority:
  max_entries: 8
  recency_weight: 0.5
embedding:
  provider: ollama
  model: all-minilm
vector:
  backend: hnsw
`)

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/cm.db" || cfg.Memory.Capacity != 50 {
		t.Errorf("yaml not applied: %+v", cfg)
	}
	if cfg.Memory.PatternLimit != 2000 {
		t.Errorf("unset field should keep default, got %d", cfg.Memory.PatternLimit)
	}
	if cfg.Priority.MaxEntries != 8 || cfg.Priority.RecencyWeight != 0.5 || cfg.Priority.RelevanceWeight != 0.4 {
		t.Errorf("unexpected priority %+v", cfg.Priority)
	}
	if cfg.Embedding.Provider != "ollama" || cfg.Embedding.Model != "all-minilm" || cfg.Vector.Backend != "hnsw" {
		t.Errorf("unexpected embedding/vector %+v %+v", cfg.Embedding, cfg.Vector)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "db_path: /tmp/from-yaml.db\n")
	t.Setenv(EnvDB, "/tmp/from-env.db")
	t.Setenv(EnvEmbedProvider, "openai")
	t.Setenv(EnvOpenAIKey, "sk-test")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-env.db" {
		t.Errorf("expected env db path, got %s", cfg.DBPath)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.APIKey != "sk-test" {
		t.Errorf("unexpected embedding %+v", cfg.Embedding)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "CONTEXT_MEMORY_VECTOR_BACKEND=hnsw\n")
	os.Unsetenv(EnvVectorBackend)

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Vector.Backend != "hnsw" {
		t.Errorf("expected backend from .env, got %s", cfg.Vector.Backend)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)
	noEnv := filepath.Join(dir, "missing.env")

	if _, err := Load(filepath.Join(dir, "nope.yaml"), noEnv); err == nil {
		t.Error("expected error for missing explicit config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "memory: [1, 2\n")
	if _, err := Load(bad, noEnv); err == nil {
		t.Error("expected parse error")
	}

	tests := map[string]string{
		"capacity": "memory:\n  capacity: -1\n",
		"weights":  "priority:\n  action_weight: -0.1\n",
		"provider": "embedding:\n  provider: carrier-pigeon\n",
		"backend":  "vector:\n  backend: faiss\n",
		"top_k":    "vector:\n  top_k: 0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name+".yaml")
			writeFile(t, p, body)
			if _, err := Load(p, noEnv); err == nil {
				t.Errorf("expected validation error for %s", name)
			}
		})
	}
}
