package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/JanciNeviemProste/jobsphere/internal/config"
	"github.com/JanciNeviemProste/jobsphere/internal/logger"
	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/services"
)

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Bulk-indexes a directory of CV files into Qdrant, bypassing the HTTP API.
// Useful for seeding a search collection from an existing CV archive.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/ingest_documents.go <directory>")
		os.Exit(1)
	}
	dir := os.Args[1]

	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, zlog)
	if err != nil {
		log.Fatalf("failed to initialize gemini: %v", err)
	}

	embeddings, err := services.NewEmbeddingProvider(cfg.Embedding, geminiService)
	if err != nil {
		log.Fatalf("failed to initialize embedding provider: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		log.Fatalf("failed to initialize qdrant: %v", err)
	}

	ctx := context.Background()
	if err := qdrantService.InitCollection(ctx, uint64(embeddings.Dimensions())); err != nil {
		log.Fatalf("failed to initialize collection: %v", err)
	}

	extractor := services.NewTextExtractor(zlog)
	ocrClient := services.NewOCRClient(cfg.OCR, zlog)
	pipeline := services.NewParsePipeline(extractor, ocrClient, zlog)
	chunker := services.NewTextChunker()

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("failed to read directory: %v", err)
	}

	ingested := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		mime, ok := mimeByExt[ext]
		if !ok {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		buf, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		meta := models.DocumentMeta{
			Filename: entry.Name(),
			MimeType: mime,
			FileSize: int64(len(buf)),
			Locale:   "en",
		}

		result, err := pipeline.ParseCV(ctx, buf, meta)
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}
		if result.Method == models.MethodMetadataFallback {
			log.Printf("skipping %s: no usable text", entry.Name())
			continue
		}

		chunks := chunker.ChunkText(result.Text, 1000, 150)
		if len(chunks) == 0 {
			continue
		}

		vectors, err := embeddings.EmbedBatch(ctx, chunks)
		if err != nil {
			log.Printf("failed to embed %s: %v", entry.Name(), err)
			continue
		}

		// The filename stands in for a resume ID in offline ingestion.
		if err := qdrantService.UpsertResumeChunks(ctx, entry.Name(), chunks, vectors); err != nil {
			log.Printf("failed to index %s: %v", entry.Name(), err)
			continue
		}

		ingested++
		log.Printf("indexed %s (%d chunks, method %s)", entry.Name(), len(chunks), result.Method)
	}

	log.Printf("done: %d files indexed", ingested)
}
