// Package embedding provides a pluggable interface for text embedding providers.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	ollama "github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// Epsilon keeps cosine similarity finite for zero vectors.
const Epsilon = 1e-8

var (
	// ErrDisabled means no provider is configured.
	ErrDisabled = errors.New("embeddings disabled")
	// ErrNoCredentials means the provider needs an API key that was not supplied.
	ErrNoCredentials = errors.New("missing embedding api key")
)

// Embedder generates embedding vectors from a batch of texts. The result has
// one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]Vector, error)
	Dims() int
}

// CosineSimilarity computes dot(a,b) / (|a|*|b| + eps). Mismatched or empty
// vectors score 0.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + Epsilon)
}

// --- Ollama Provider ---

// OllamaEmbedder uses a local Ollama instance for embeddings.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
	dims   int
}

// NewOllamaEmbedder creates an embedder using Ollama's API.
// Default model: nomic-embed-text (768 dims), all-minilm (384 dims).
func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	dims := 768
	if model == "all-minilm" {
		dims = 384
	}
	return &OllamaEmbedder{
		client: ollama.NewClient(u, &http.Client{Timeout: 30 * time.Second}),
		model:  model,
		dims:   dims,
	}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	resp, err := e.client.Embed(ctx, &ollama.EmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (e *OllamaEmbedder) Dims() int { return e.dims }

// --- OpenAI-compatible Provider ---

// OpenAIEmbedder uses any OpenAI-compatible embedding API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAIEmbedder creates an embedder using an OpenAI-compatible API.
func NewOpenAIEmbedder(baseURL, apiKey, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, ErrNoCredentials
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   1536,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	out := make([]Vector, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai returned out-of-range index %d", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *OpenAIEmbedder) Dims() int { return e.dims }

// --- Factory ---

// Options selects and authenticates a provider.
type Options struct {
	Provider string `yaml:"provider" json:"provider"` // "openai" | "ollama" | "hash" | "" (disabled)
	APIKey   string `yaml:"-" json:"-"`
	Model    string `yaml:"model" json:"model"`
	BaseURL  string `yaml:"base_url" json:"base_url"`
}

// New builds the embedder described by opts.
func New(opts Options) (Embedder, error) {
	switch opts.Provider {
	case "openai":
		e, err := NewOpenAIEmbedder(opts.BaseURL, opts.APIKey, opts.Model)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "ollama":
		e, err := NewOllamaEmbedder(opts.BaseURL, opts.Model)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "hash":
		return NewHashEmbedder(0), nil
	case "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}

// OptionsFromEnv reads provider settings from environment variables.
// CONTEXT_MEMORY_EMBED_PROVIDER: "ollama" | "openai" | "hash" | "" (disabled)
// CONTEXT_MEMORY_EMBED_MODEL: model name
// CONTEXT_MEMORY_EMBED_URL: base URL override
// OPENAI_API_KEY: for openai provider
func OptionsFromEnv() Options {
	return Options{
		Provider: os.Getenv("CONTEXT_MEMORY_EMBED_PROVIDER"),
		Model:    os.Getenv("CONTEXT_MEMORY_EMBED_MODEL"),
		BaseURL:  os.Getenv("CONTEXT_MEMORY_EMBED_URL"),
		APIKey:   os.Getenv("OPENAI_API_KEY"),
	}
}
