package services

import (
	"archive/zip"
	"bytes"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// TextExtractor is the stage-1 fast path: structured text extraction for PDF
// and DOCX buffers. Failures map to stable *ParseError codes; the library's
// raw errors never cross this boundary.
type TextExtractor interface {
	ExtractPDF(buf []byte) (string, error)
	ExtractDOCX(buf []byte) (string, error)
}

type textExtractor struct {
	logger *zap.Logger
}

func NewTextExtractor(logger *zap.Logger) TextExtractor {
	return &textExtractor{logger: logger}
}

// ExtractPDF pulls the text layer out of a PDF. Pages that fail individually
// are skipped; a document-level failure is reported as corrupted.
func (e *textExtractor) ExtractPDF(buf []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		e.logger.Warn("PDF open failed", zap.Error(err))
		return "", errCorrupted(err.Error())
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Debug("PDF page extraction failed, skipping",
				zap.Int("page", pageIndex), zap.Error(err))
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// ExtractDOCX rejects macro-bearing documents before any text extraction,
// then pulls the raw text out of the OOXML container.
func (e *textExtractor) ExtractDOCX(buf []byte) (string, error) {
	hasMacros, err := containsVBAProject(buf)
	if err != nil {
		e.logger.Warn("DOCX zip inspection failed", zap.Error(err))
		return "", errCorrupted(err.Error())
	}
	if hasMacros {
		return "", errHasMacros()
	}

	text, _, err := docconv.ConvertDocx(bytes.NewReader(buf))
	if err != nil {
		e.logger.Warn("DOCX text extraction failed", zap.Error(err))
		return "", errCorrupted(err.Error())
	}

	return text, nil
}

// containsVBAProject opens the buffer as a ZIP archive and looks for a VBA
// macro project member. This runs independent of text extraction: it is a
// security gate, not a parsing concern.
func containsVBAProject(buf []byte) (bool, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return false, err
	}

	for _, f := range zr.File {
		if strings.Contains(f.Name, "vbaProject.bin") {
			return true, nil
		}
	}
	return false, nil
}
