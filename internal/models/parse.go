package models

// ParseMethod identifies which extraction tier produced the text.
type ParseMethod string

const (
	MethodPDFText          ParseMethod = "pdf_text"
	MethodDOCXText         ParseMethod = "docx_text"
	MethodPlainText        ParseMethod = "plain_text"
	MethodOCRTesseract     ParseMethod = "ocr_tesseract"
	MethodMetadataFallback ParseMethod = "metadata_fallback"
)

// Confidence bands are fixed per method; a ParseResult never carries a
// confidence outside its method's band.
const (
	ConfidenceStructured = 0.95
	ConfidenceOCR        = 0.7
	ConfidenceFallback   = 0.0
)

// DocumentMeta is the declared metadata accompanying an uploaded buffer.
type DocumentMeta struct {
	Filename string
	MimeType string
	FileSize int64
	Locale   string
}

// ParseResult is the single output of the extraction pipeline. It is created
// once per document and immutable afterward. Method == MethodMetadataFallback
// implies Confidence == 0 and a populated Error.
type ParseResult struct {
	Text            string           `json:"text"`
	Method          ParseMethod      `json:"method"`
	Confidence      float64          `json:"confidence"`
	ExtractedLength int              `json:"extractedLength"`
	Error           *ParseResultNote `json:"error,omitempty"`
	Filename        string           `json:"filename"`
	MimeType        string           `json:"mimeType"`
	FileSize        int64            `json:"fileSize"`
	TraceID         string           `json:"traceId"`
}

// ParseResultNote describes a degraded (not failed) extraction.
type ParseResultNote struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OCRResult mirrors the JSON contract of the external tesseract parser. All
// OCR failure modes are represented here, never as a returned error.
type OCRResult struct {
	Text    string `json:"text"`
	Method  string `json:"method"`
	Length  int    `json:"length"`
	Success bool   `json:"success"`
	Lang    string `json:"lang,omitempty"`
	Error   string `json:"error,omitempty"`
}
