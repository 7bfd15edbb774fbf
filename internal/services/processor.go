package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/repositories"
)

// Chunking parameters for vector ingestion.
const (
	chunkSize    = 1000
	chunkOverlap = 150
)

// DocumentProcessor runs the full ingestion flow for one uploaded document:
// text extraction, structured CV extraction, embedding and indexing, and the
// resume record. Invoked by the worker pool, never by handlers directly.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, docID uuid.UUID) error
}

type documentProcessor struct {
	docRepo     repositories.DocumentRepository
	resumeRepo  repositories.ResumeRepository
	storage     StorageService
	pipeline    *ParsePipeline
	cvExtractor CVExtractor
	embeddings  EmbeddingProvider
	chunker     TextChunker
	qdrant      QdrantService
	logger      *zap.Logger
}

func NewDocumentProcessor(
	docRepo repositories.DocumentRepository,
	resumeRepo repositories.ResumeRepository,
	storage StorageService,
	pipeline *ParsePipeline,
	cvExtractor CVExtractor,
	embeddings EmbeddingProvider,
	chunker TextChunker,
	qdrant QdrantService,
	logger *zap.Logger,
) DocumentProcessor {
	return &documentProcessor{
		docRepo:     docRepo,
		resumeRepo:  resumeRepo,
		storage:     storage,
		pipeline:    pipeline,
		cvExtractor: cvExtractor,
		embeddings:  embeddings,
		chunker:     chunker,
		qdrant:      qdrant,
		logger:      logger,
	}
}

// ProcessDocument implements DocumentProcessor.
func (p *documentProcessor) ProcessDocument(ctx context.Context, docID uuid.UUID) error {
	if err := p.docRepo.UpdateStatus(docID, models.StatusProcessing); err != nil {
		return err
	}

	doc, err := p.docRepo.FindByID(docID)
	if err != nil {
		return err
	}

	data, err := p.storage.ReadFile(doc.Filename)
	if err != nil {
		p.fail(docID, fmt.Sprintf("failed to read stored file: %v", err))
		return err
	}

	meta := models.DocumentMeta{
		Filename: doc.OriginalFileName,
		MimeType: doc.MimeType,
		FileSize: doc.FileSize,
		Locale:   doc.Locale,
	}

	parseResult, err := p.pipeline.ParseCV(ctx, data, meta)
	if err != nil {
		p.fail(docID, err.Error())
		return err
	}

	resume := &models.Resume{
		DocumentID:      docID,
		RawText:         parseResult.Text,
		ParseMethod:     string(parseResult.Method),
		ParseConfidence: parseResult.Confidence,
		ExtractedLength: parseResult.ExtractedLength,
		TraceID:         parseResult.TraceID,
	}
	if parseResult.Error != nil {
		note := fmt.Sprintf("%s: %s", parseResult.Error.Code, parseResult.Error.Message)
		resume.ParseNote = &note
	}

	// Structured extraction and indexing only make sense for real text.
	// Fallback records are stored as-is for manual review.
	if parseResult.Method != models.MethodMetadataFallback {
		cv, err := p.cvExtractor.ExtractCV(ctx, parseResult.Text)
		if err != nil {
			p.fail(docID, err.Error())
			return err
		}

		serialized, err := json.Marshal(cv)
		if err != nil {
			p.fail(docID, fmt.Sprintf("failed to serialize cv: %v", err))
			return err
		}
		resume.ExtractedCV = string(serialized)

		// The summary is enrichment; its failure never blocks the record.
		summary, err := p.cvExtractor.SummarizeCV(ctx, parseResult.Text)
		if err != nil {
			p.logger.Warn("cv summary generation failed",
				zap.String("document_id", docID.String()),
				zap.Error(err))
		} else {
			resume.Summary = summary
		}
	}

	if err := p.resumeRepo.Create(resume); err != nil {
		p.fail(docID, err.Error())
		return err
	}

	if parseResult.Method != models.MethodMetadataFallback {
		if err := p.indexResume(ctx, resume.ID.String(), parseResult.Text); err != nil {
			// Indexing failure degrades search, not the record itself.
			p.logger.Error("resume indexing failed",
				zap.String("resume_id", resume.ID.String()),
				zap.Error(err))
		}
	}

	if err := p.docRepo.UpdateStatus(docID, models.StatusCompleted); err != nil {
		return err
	}

	p.logger.Info("document processed",
		zap.String("document_id", docID.String()),
		zap.String("resume_id", resume.ID.String()),
		zap.String("method", resume.ParseMethod),
	)
	return nil
}

func (p *documentProcessor) indexResume(ctx context.Context, resumeID, text string) error {
	chunks := p.chunker.ChunkText(text, chunkSize, chunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := p.embeddings.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	return p.qdrant.UpsertResumeChunks(ctx, resumeID, chunks, vectors)
}

func (p *documentProcessor) fail(docID uuid.UUID, msg string) {
	if err := p.docRepo.UpdateError(docID, msg); err != nil {
		p.logger.Error("failed to record document error",
			zap.String("document_id", docID.String()),
			zap.Error(err))
	}
}
