package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/JanciNeviemProste/jobsphere/internal/config"
)

func configEmbedding(provider string) config.EmbeddingConfig {
	return config.EmbeddingConfig{Provider: provider, APIKey: "test-key"}
}

func TestNormalizeEmbeddingInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "Senior   Go\n\tEngineer", "senior go engineer"},
		{"lowercases", "PostgreSQL AND Docker", "postgresql and docker"},
		{"trims", "  kubernetes  ", "kubernetes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeEmbeddingInput(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("normalizeEmbeddingInput(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEmbeddingInputRejectsEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t "} {
		if _, err := normalizeEmbeddingInput(in); err == nil {
			t.Fatalf("expected empty input %q to be rejected", in)
		}
	}
}

func TestEmbedChunkedPreservesOrder(t *testing.T) {
	texts := make([]string, 300)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	var batchSizes []int
	fn := func(_ context.Context, batch []string) ([][]float32, error) {
		batchSizes = append(batchSizes, len(batch))
		out := make([][]float32, len(batch))
		for i, text := range batch {
			// Encode the text identity so order is verifiable.
			var n int
			fmt.Sscanf(text, "text-%d", &n)
			out[i] = []float32{float32(n)}
		}
		return out, nil
	}

	vectors, err := embedChunked(context.Background(), texts, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 300 {
		t.Fatalf("expected 300 vectors, got %d", len(vectors))
	}
	for i, vec := range vectors {
		if int(vec[0]) != i {
			t.Fatalf("vector %d out of order: got %v", i, vec[0])
		}
	}

	wantBatches := []int{128, 128, 44}
	if len(batchSizes) != len(wantBatches) {
		t.Fatalf("expected %d batches, got %v", len(wantBatches), batchSizes)
	}
	for i, want := range wantBatches {
		if batchSizes[i] != want {
			t.Fatalf("batch %d size = %d, want %d", i, batchSizes[i], want)
		}
	}
}

func TestEmbedChunkedPropagatesFailure(t *testing.T) {
	texts := make([]string, 200)
	for i := range texts {
		texts[i] = "x"
	}

	calls := 0
	fn := func(_ context.Context, batch []string) ([][]float32, error) {
		calls++
		if calls == 2 {
			return nil, fmt.Errorf("provider down")
		}
		return make([][]float32, len(batch)), nil
	}

	if _, err := embedChunked(context.Background(), texts, fn); err == nil {
		t.Fatal("expected second batch failure to propagate")
	}
}

func TestNewEmbeddingProviderUnknown(t *testing.T) {
	cfg := configEmbedding("openai")
	if _, err := NewEmbeddingProvider(cfg, nil); err == nil {
		t.Fatal("expected unknown provider to be rejected")
	}
}

func TestNewEmbeddingProviderNames(t *testing.T) {
	gemini, err := NewEmbeddingProvider(configEmbedding("gemini"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gemini.Name() != "gemini" {
		t.Fatalf("unexpected provider name: %s", gemini.Name())
	}

	voyage, err := NewEmbeddingProvider(configEmbedding("voyage"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if voyage.Name() != "voyage" {
		t.Fatalf("unexpected provider name: %s", voyage.Name())
	}
	if voyage.Dimensions() == gemini.Dimensions() {
		t.Fatal("providers should declare their own dimensions")
	}
}
