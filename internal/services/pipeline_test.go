package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

type stubExtractor struct {
	pdfText  string
	pdfErr   error
	docxText string
	docxErr  error
}

func (s *stubExtractor) ExtractPDF(_ []byte) (string, error)  { return s.pdfText, s.pdfErr }
func (s *stubExtractor) ExtractDOCX(_ []byte) (string, error) { return s.docxText, s.docxErr }

type stubOCR struct {
	result models.OCRResult
	called bool
}

func (s *stubOCR) CallOCR(_ context.Context, _ []byte, _ models.DocumentMeta, _ string) models.OCRResult {
	s.called = true
	return s.result
}

func pdfMeta() models.DocumentMeta {
	return models.DocumentMeta{
		Filename: "resume.pdf",
		MimeType: "application/pdf",
		FileSize: 1234,
		Locale:   "en",
	}
}

func TestNextTier(t *testing.T) {
	cases := []struct {
		name    string
		current Tier
		textLen int
		want    Tier
	}{
		{"fast parse with enough text", TierFastParse, 500, TierDone},
		{"fast parse exactly at threshold", TierFastParse, minStructuredTextLen, TierDone},
		{"fast parse just below threshold", TierFastParse, minStructuredTextLen - 1, TierOCR},
		{"fast parse with nothing", TierFastParse, 0, TierOCR},
		{"ocr with enough text", TierOCR, 100, TierDone},
		{"ocr exactly at threshold", TierOCR, minFinalTextLen, TierDone},
		{"ocr just below threshold", TierOCR, minFinalTextLen - 1, TierMetadataFallback},
		{"fallback is terminal", TierMetadataFallback, 0, TierDone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextTier(tc.current, tc.textLen); got != tc.want {
				t.Fatalf("nextTier(%d, %d) = %d, want %d", tc.current, tc.textLen, got, tc.want)
			}
		})
	}
}

func TestParseCVStructuredSuccess(t *testing.T) {
	longText := strings.Repeat("experienced software engineer ", 10)
	ocr := &stubOCR{}
	p := NewParsePipeline(&stubExtractor{pdfText: longText}, ocr, zap.NewNop())

	result, err := p.ParseCV(context.Background(), []byte("%PDF"), pdfMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Method != models.MethodPDFText {
		t.Fatalf("expected pdf_text method, got %s", result.Method)
	}
	if result.Confidence != models.ConfidenceStructured {
		t.Fatalf("expected confidence %v, got %v", models.ConfidenceStructured, result.Confidence)
	}
	if ocr.called {
		t.Fatal("OCR must not run when structured extraction succeeds")
	}
	if result.TraceID == "" {
		t.Fatal("expected trace ID to be assigned")
	}
	if result.Error != nil {
		t.Fatalf("unexpected error descriptor: %+v", result.Error)
	}
}

func TestParseCVEscalatesToOCR(t *testing.T) {
	ocrText := strings.Repeat("scanned resume text ", 5)
	ocr := &stubOCR{result: models.OCRResult{Text: ocrText, Success: true}}
	p := NewParsePipeline(&stubExtractor{pdfText: "tiny"}, ocr, zap.NewNop())

	result, err := p.ParseCV(context.Background(), []byte("%PDF"), pdfMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ocr.called {
		t.Fatal("expected OCR to run for short structured output")
	}
	if result.Method != models.MethodOCRTesseract {
		t.Fatalf("expected ocr_tesseract method, got %s", result.Method)
	}
	if result.Confidence != models.ConfidenceOCR {
		t.Fatalf("expected confidence %v, got %v", models.ConfidenceOCR, result.Confidence)
	}
}

func TestParseCVMetadataFallback(t *testing.T) {
	ocr := &stubOCR{result: models.OCRResult{Success: false, Error: "tesseract found nothing"}}
	p := NewParsePipeline(&stubExtractor{pdfText: ""}, ocr, zap.NewNop())

	result, err := p.ParseCV(context.Background(), []byte("%PDF"), pdfMeta())
	if err != nil {
		t.Fatalf("fallback must not produce an error, got: %v", err)
	}

	if result.Method != models.MethodMetadataFallback {
		t.Fatalf("expected metadata_fallback method, got %s", result.Method)
	}
	if result.Confidence != 0 {
		t.Fatalf("fallback confidence must be 0, got %v", result.Confidence)
	}
	if result.Error == nil || result.Error.Code != CodeNoText {
		t.Fatalf("expected %s error descriptor, got %+v", CodeNoText, result.Error)
	}
	if result.Text == "" {
		t.Fatal("fallback must still produce text")
	}
	if !strings.Contains(result.Text, "resume") {
		t.Fatalf("fallback text should carry the filename, got: %q", result.Text)
	}
}

func TestParseCVFallbackWhenOCRTooShort(t *testing.T) {
	ocr := &stubOCR{result: models.OCRResult{Text: "abc", Success: true}}
	p := NewParsePipeline(&stubExtractor{pdfText: ""}, ocr, zap.NewNop())

	result, err := p.ParseCV(context.Background(), []byte("%PDF"), pdfMeta())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Method != models.MethodMetadataFallback {
		t.Fatalf("expected metadata_fallback for too-short OCR text, got %s", result.Method)
	}
}

func TestParseCVCorruptedPDFRejects(t *testing.T) {
	p := NewParsePipeline(&stubExtractor{pdfErr: errCorrupted("bad xref table")}, &stubOCR{}, zap.NewNop())

	_, err := p.ParseCV(context.Background(), []byte("junk"), pdfMeta())
	if err == nil {
		t.Fatal("expected corrupted file to be rejected")
	}

	var perr *ParseError
	if !errors.As(err, &perr) || perr.Code != CodeCorrupted {
		t.Fatalf("expected %s, got %v", CodeCorrupted, err)
	}
}

func TestParseCVMacroDocxRejects(t *testing.T) {
	meta := models.DocumentMeta{
		Filename: "resume.docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		FileSize: 1234,
	}
	p := NewParsePipeline(&stubExtractor{docxErr: errHasMacros()}, &stubOCR{}, zap.NewNop())

	_, err := p.ParseCV(context.Background(), []byte("PK"), meta)
	if err == nil {
		t.Fatal("expected macro document to be rejected")
	}

	var perr *ParseError
	if !errors.As(err, &perr) || perr.Code != CodeHasMacros {
		t.Fatalf("expected %s, got %v", CodeHasMacros, err)
	}
}

func TestParseCVMacroRejectionIsNotAWarning(t *testing.T) {
	meta := models.DocumentMeta{
		Filename: "resume.docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		FileSize: 1234,
	}

	core, logs := observer.New(zap.WarnLevel)

	p := NewParsePipeline(&stubExtractor{docxErr: errHasMacros()}, &stubOCR{}, zap.New(core))
	if _, err := p.ParseCV(context.Background(), []byte("PK"), meta); err == nil {
		t.Fatal("expected macro document to be rejected")
	}
	if n := logs.FilterMessage("structured DOCX extraction failed").Len(); n != 0 {
		t.Fatalf("macro rejection must not log an extraction warning, got %d", n)
	}

	p = NewParsePipeline(&stubExtractor{docxErr: errCorrupted("truncated archive")}, &stubOCR{}, zap.New(core))
	_, _ = p.ParseCV(context.Background(), []byte("PK"), meta)
	if n := logs.FilterMessage("structured DOCX extraction failed").Len(); n != 1 {
		t.Fatalf("expected one extraction warning for a corrupted docx, got %d", n)
	}
}

func TestParseCVPlainTextBypass(t *testing.T) {
	text := strings.Repeat("plain text resume content ", 5)
	meta := models.DocumentMeta{Filename: "resume.txt", MimeType: "text/plain", FileSize: int64(len(text))}
	ocr := &stubOCR{}
	p := NewParsePipeline(&stubExtractor{}, ocr, zap.NewNop())

	result, err := p.ParseCV(context.Background(), []byte(text), meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Method != models.MethodPlainText {
		t.Fatalf("expected plain_text method, got %s", result.Method)
	}
	if result.Text != text {
		t.Fatal("plain text must pass through unmodified")
	}
	if ocr.called {
		t.Fatal("OCR must not run for plain text")
	}
}

func TestParseCVUnknownTypeRejects(t *testing.T) {
	meta := models.DocumentMeta{Filename: "resume.xlsx", MimeType: "application/vnd.ms-excel", FileSize: 10}
	p := NewParsePipeline(&stubExtractor{}, &stubOCR{}, zap.NewNop())

	_, err := p.ParseCV(context.Background(), []byte("data"), meta)

	var perr *ParseError
	if !errors.As(err, &perr) || perr.Code != CodeInvalidType {
		t.Fatalf("expected %s, got %v", CodeInvalidType, err)
	}
}
