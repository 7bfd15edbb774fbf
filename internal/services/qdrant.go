package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// QdrantService indexes resume chunks for semantic candidate search. One
// point per chunk; resume_id in the payload ties chunks back to the record.
type QdrantService interface {
	InitCollection(ctx context.Context, vectorSize uint64) error
	UpsertResumeChunks(ctx context.Context, resumeID string, chunks []string, vectors [][]float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteResume(ctx context.Context, resumeID string) error
}

type SearchResult struct {
	ResumeID   string
	Score      float32
	Text       string
	ChunkIndex int
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger
}

func NewQdrantService(urlStr, apiKey, collectionName string, logger *zap.Logger) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC client talks to 6334 unless the URL says otherwise.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Debug("qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created",
		zap.String("collection", q.collectionName),
		zap.Uint64("vectorSize", vectorSize))
	return nil
}

// UpsertResumeChunks implements QdrantService. Old chunks for the resume are
// removed first so a re-parse never leaves stale vectors behind.
func (q *qdrantService) UpsertResumeChunks(ctx context.Context, resumeID string, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	if err := q.DeleteResume(ctx, resumeID); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(uuid.New().ID())),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"resume_id":   resumeID,
				"chunk_index": i,
				"text":        chunk,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []SearchResult
	for _, point := range searchResult {
		payload := point.Payload

		result := SearchResult{Score: point.Score}

		if resumeID, ok := payload["resume_id"]; ok {
			if val, ok := resumeID.GetKind().(*qdrant.Value_StringValue); ok {
				result.ResumeID = val.StringValue
			}
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}

		if idx, ok := payload["chunk_index"]; ok {
			if val, ok := idx.GetKind().(*qdrant.Value_IntegerValue); ok {
				result.ChunkIndex = int(val.IntegerValue)
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// DeleteResume implements QdrantService.
func (q *qdrantService) DeleteResume(ctx context.Context, resumeID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("resume_id", resumeID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete resume chunks: %w", err)
	}

	return nil
}
