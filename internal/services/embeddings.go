package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JanciNeviemProste/jobsphere/internal/config"
)

// embedBatchSize is the largest slice handed to a provider in one call.
// Larger inputs are chunked internally; callers never see the split.
const embedBatchSize = 128

// EmbeddingProvider generates dense vectors for CV and job text. Providers
// are interchangeable at runtime via EMBEDDING_PROVIDER.
type EmbeddingProvider interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

func NewEmbeddingProvider(cfg config.EmbeddingConfig, gemini GeminiService) (EmbeddingProvider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return &geminiEmbeddings{gemini: gemini}, nil
	case "voyage":
		model := cfg.Model
		if model == "" {
			model = "voyage-2"
		}
		return &voyageEmbeddings{
			apiKey: cfg.APIKey,
			model:  model,
			client: &http.Client{Timeout: 30 * time.Second},
		}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// normalizeEmbeddingInput canonicalizes text so the same content always maps
// to the same vector regardless of incidental whitespace or casing.
func normalizeEmbeddingInput(text string) (string, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if normalized == "" {
		return "", fmt.Errorf("cannot embed empty text")
	}
	return normalized, nil
}

// embedChunked splits texts into provider-sized batches while preserving
// input order in the returned vectors.
func embedChunked(ctx context.Context, texts []string, fn func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := fn(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

type geminiEmbeddings struct {
	gemini GeminiService
}

func (g *geminiEmbeddings) Name() string { return "gemini" }

func (g *geminiEmbeddings) Dimensions() int { return 768 }

func (g *geminiEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	normalized, err := normalizeEmbeddingInput(text)
	if err != nil {
		return nil, err
	}
	return g.gemini.GenerateEmbedding(ctx, normalized)
}

func (g *geminiEmbeddings) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	normalized := make([]string, len(texts))
	for i, text := range texts {
		n, err := normalizeEmbeddingInput(text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		normalized[i] = n
	}
	return embedChunked(ctx, normalized, g.gemini.GenerateEmbeddings)
}

type voyageEmbeddings struct {
	apiKey string
	model  string
	client *http.Client
}

type voyageRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (v *voyageEmbeddings) Name() string { return "voyage" }

func (v *voyageEmbeddings) Dimensions() int { return 1024 }

func (v *voyageEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := v.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (v *voyageEmbeddings) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	normalized := make([]string, len(texts))
	for i, text := range texts {
		n, err := normalizeEmbeddingInput(text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		normalized[i] = n
	}
	return embedChunked(ctx, normalized, v.embedBatch)
}

func (v *voyageEmbeddings) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(voyageRequest{Input: texts, Model: v.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.voyageai.com/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("voyage API returned %d: %s", resp.StatusCode, string(payload))
	}

	var parsed voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode voyage response: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("voyage returned %d embeddings, want %d", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("voyage returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
