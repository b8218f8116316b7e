package embedding

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"self non-unit", Vector{3, 4, 12}, Vector{3, 4, 12}, 1.0, 1e-6},
		{"negated", Vector{3, 4, 12}, Vector{-3, -4, -12}, -1.0, 1e-6},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if _, err := New(Options{Provider: "openai"}); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
	if _, err := New(Options{Provider: "nope"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("CONTEXT_MEMORY_EMBED_PROVIDER", "ollama")
	t.Setenv("CONTEXT_MEMORY_EMBED_MODEL", "all-minilm")
	t.Setenv("OPENAI_API_KEY", "")

	opts := OptionsFromEnv()
	if opts.Provider != "ollama" || opts.Model != "all-minilm" {
		t.Errorf("unexpected options %+v", opts)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if e.Dims() != 384 {
		t.Errorf("expected 384 dims, got %d", e.Dims())
	}
}

func TestHashEmbedder(t *testing.T) {
	h := NewHashEmbedder(64)
	vecs, err := h.Embed(context.Background(), []string{
		"Redesign, logo: ACME",
		"acme logo redesign",
		"quarterly tax filing",
		"",
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 4 {
		t.Fatalf("expected 4 vectors, got %d", len(vecs))
	}
	same := CosineSimilarity(vecs[0], vecs[1])
	if math.Abs(same-1) > 1e-5 {
		t.Errorf("same words should embed identically, got %f", same)
	}
	if other := CosineSimilarity(vecs[0], vecs[2]); other >= same {
		t.Errorf("unrelated text scored %f >= %f", other, same)
	}
	if len(vecs[3]) != 0 {
		t.Error("empty text should yield an empty vector")
	}
}

type stubEmbedder struct {
	vecs []Vector
	err  error
}

func (s stubEmbedder) Embed(_ context.Context, texts []string) ([]Vector, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vecs, nil
}

func (s stubEmbedder) Dims() int { return 2 }

func TestBridge_FailSoft(t *testing.T) {
	ctx := context.Background()
	b := NewBridge(nil, 0)
	texts := []string{"a", "b", "c"}

	cases := map[string]Options{
		"disabled":   {},
		"no api key": {Provider: "openai"},
		"unknown":    {Provider: "carrier-pigeon"},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			got := b.Embed(ctx, texts, opts)
			if len(got) != len(texts) {
				t.Fatalf("expected %d vectors, got %d", len(texts), len(got))
			}
			for i, v := range got {
				if len(v) != 0 {
					t.Errorf("vector %d should be empty", i)
				}
			}
		})
	}

	b.Register("broken", stubEmbedder{err: errors.New("boom")})
	if got := b.Embed(ctx, texts, Options{Provider: "broken"}); len(got) != 3 || len(got[0]) != 0 {
		t.Error("provider error should yield empty vectors")
	}

	b.Register("short", stubEmbedder{vecs: []Vector{{1, 0}}})
	if got := b.Embed(ctx, texts, Options{Provider: "short"}); len(got) != 3 || len(got[0]) != 0 {
		t.Error("wrong result count should yield empty vectors")
	}
}

func TestBridge_UsesProvider(t *testing.T) {
	b := NewBridge(nil, 0)
	b.Register("stub", stubEmbedder{vecs: []Vector{{1, 0}, {0, 1}}})

	got := b.Embed(context.Background(), []string{"x", "y"}, Options{Provider: "stub"})
	if len(got) != 2 || got[1][1] != 1 {
		t.Errorf("unexpected vectors %v", got)
	}

	one := NewBridge(nil, 0).EmbedOne(context.Background(), "acme", Options{Provider: "hash"})
	if len(one) != 256 {
		t.Errorf("expected 256-dim hash vector, got %d", len(one))
	}
}

type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, _ []string) ([]Vector, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingEmbedder) Dims() int { return 2 }

func TestBridge_Timeout(t *testing.T) {
	b := NewBridge(nil, 20*time.Millisecond)
	b.Register("slow", blockingEmbedder{})
	texts := []string{"a", "b"}

	start := time.Now()
	got := b.Embed(context.Background(), texts, Options{Provider: "slow"})
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("expected timeout to cut the call short, took %v", elapsed)
	}
	if len(got) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(got))
	}
	for i, v := range got {
		if len(v) != 0 {
			t.Errorf("vector %d should be empty after timeout", i)
		}
	}
}
