package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

// Escalation thresholds between extraction tiers. Stage 1 output under
// minStructuredTextLen triggers OCR; post-OCR text under minFinalTextLen
// degrades to the metadata fallback.
const (
	minStructuredTextLen = 50
	minFinalTextLen      = 20
)

// Tier is the extraction pipeline's state. Tiers only ever advance; there is
// no reordering and no skipping beyond the documented thresholds.
type Tier int

const (
	TierFastParse Tier = iota
	TierOCR
	TierMetadataFallback
	TierDone
)

// nextTier is the pure escalation decision: given the text length produced by
// the current tier, pick the next one. Keeping it side-effect free makes the
// fallback logic testable without real OCR or parser services.
func nextTier(current Tier, textLen int) Tier {
	switch current {
	case TierFastParse:
		if textLen < minStructuredTextLen {
			return TierOCR
		}
		return TierDone
	case TierOCR:
		if textLen < minFinalTextLen {
			return TierMetadataFallback
		}
		return TierDone
	default:
		return TierDone
	}
}

// ParsePipeline is the document-to-text entry point. Past the stage-1
// corruption/macro checks it never fails: every document yields a ParseResult,
// and callers distinguish degraded output by Confidence and Error fields, not
// by the error channel.
type ParsePipeline struct {
	extractor TextExtractor
	ocr       OCRClient
	logger    *zap.Logger
}

func NewParsePipeline(extractor TextExtractor, ocr OCRClient, logger *zap.Logger) *ParsePipeline {
	return &ParsePipeline{
		extractor: extractor,
		ocr:       ocr,
		logger:    logger,
	}
}

// ParseCV runs the multi-tier extraction over one uploaded buffer. The
// returned error is non-nil only for rejecting conditions (macros, corrupted
// structured file of an unsupported kind); insufficient text is not an error.
func (p *ParsePipeline) ParseCV(ctx context.Context, buf []byte, meta models.DocumentMeta) (*models.ParseResult, error) {
	traceID := uuid.New().String()
	start := time.Now()

	if meta.FileSize == 0 {
		meta.FileSize = int64(len(buf))
	}

	p.logger.Info("CV parse pipeline started",
		zap.String("trace_id", traceID),
		zap.String("filename", meta.Filename),
		zap.String("mime_type", meta.MimeType),
		zap.Int64("file_size", meta.FileSize),
	)

	text, method, err := p.runFastParse(buf, meta, traceID)
	if err != nil {
		return nil, err
	}

	tier := nextTier(TierFastParse, len(text))

	if tier == TierOCR {
		p.logger.Info("triggering OCR fallback",
			zap.String("trace_id", traceID),
			zap.Int("structured_length", len(text)),
		)

		ocrResult := p.ocr.CallOCR(ctx, buf, meta, traceID)
		if ocrResult.Success && ocrResult.Text != "" {
			text = ocrResult.Text
			method = models.MethodOCRTesseract
		} else {
			p.logger.Warn("OCR returned no text",
				zap.String("trace_id", traceID),
				zap.String("ocr_error", ocrResult.Error),
			)
		}
		tier = nextTier(TierOCR, len(text))
	}

	if tier == TierMetadataFallback {
		p.logger.Warn("insufficient text after all parsers",
			zap.String("trace_id", traceID),
			zap.Int("final_length", len(text)),
			zap.Duration("duration", time.Since(start)),
		)
		return p.metadataFallback(meta, traceID), nil
	}

	result := &models.ParseResult{
		Text:            text,
		Method:          method,
		Confidence:      confidenceFor(method),
		ExtractedLength: len(text),
		Filename:        meta.Filename,
		MimeType:        meta.MimeType,
		FileSize:        meta.FileSize,
		TraceID:         traceID,
	}

	p.logger.Info("CV parse pipeline complete",
		zap.String("trace_id", traceID),
		zap.String("method", string(method)),
		zap.Int("extracted_length", result.ExtractedLength),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (p *ParsePipeline) runFastParse(buf []byte, meta models.DocumentMeta, traceID string) (string, models.ParseMethod, error) {
	switch {
	case meta.MimeType == "application/pdf":
		text, err := p.extractor.ExtractPDF(buf)
		if err != nil {
			p.logger.Warn("structured PDF extraction failed",
				zap.String("trace_id", traceID), zap.Error(err))
			return "", "", err
		}
		return text, models.MethodPDFText, nil

	case strings.Contains(meta.MimeType, "wordprocessing"):
		text, err := p.extractor.ExtractDOCX(buf)
		if err != nil {
			// A macro rejection is a policy verdict, not an extraction
			// failure; do not warn about it.
			var perr *ParseError
			if !errors.As(err, &perr) || perr.Code != CodeHasMacros {
				p.logger.Warn("structured DOCX extraction failed",
					zap.String("trace_id", traceID), zap.Error(err))
			}
			return "", "", err
		}
		return text, models.MethodDOCXText, nil

	case strings.HasPrefix(meta.MimeType, "text/plain"):
		return string(buf), models.MethodPlainText, nil

	default:
		return "", "", errInvalidType(meta.MimeType)
	}
}

// metadataFallback synthesizes a minimal text record so downstream consumers
// always have something usable. The error descriptor is mandatory here; it is
// how callers detect degraded output.
func (p *ParsePipeline) metadataFallback(meta models.DocumentMeta, traceID string) *models.ParseResult {
	name := strings.TrimSuffix(meta.Filename, filepath.Ext(meta.Filename))
	text := fmt.Sprintf("Filename: %s\nFile type: %s\nSize: %d bytes", name, meta.MimeType, meta.FileSize)

	return &models.ParseResult{
		Text:            text,
		Method:          models.MethodMetadataFallback,
		Confidence:      models.ConfidenceFallback,
		ExtractedLength: len(text),
		Error: &models.ParseResultNote{
			Code:    CodeNoText,
			Message: "No text extracted after all parsing attempts",
		},
		Filename: meta.Filename,
		MimeType: meta.MimeType,
		FileSize: meta.FileSize,
		TraceID:  traceID,
	}
}

func confidenceFor(method models.ParseMethod) float64 {
	switch method {
	case models.MethodOCRTesseract:
		return models.ConfidenceOCR
	case models.MethodMetadataFallback:
		return models.ConfidenceFallback
	default:
		return models.ConfidenceStructured
	}
}
