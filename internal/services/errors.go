package services

import "fmt"

// Stable error codes surfaced to the API layer. These are the rejecting
// errors of the pipeline: a document that trips one of them is refused before
// (or during) stage 1 and never produces a ParseResult.
const (
	CodeFileTooLarge    = "file_too_large"
	CodeInvalidType     = "file_invalid_type"
	CodeMimeMismatch    = "mime_type_mismatch"
	CodeMalwareDetected = "file_malware_detected"
	CodeHasMacros       = "file_has_macros"
	CodeCorrupted       = "file_corrupted"
	CodeNoText          = "file_no_text_after_ocr"
	CodeExtractFailed   = "ai_extraction_failed"
)

// ParseError is the typed rejection carried across the pipeline boundary.
// Recoverable marks errors worth a queue retry (infrastructure hiccups);
// everything about the input itself is final.
type ParseError struct {
	Code        string
	Message     string
	Details     map[string]any
	Recoverable bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errFileTooLarge(size, maxSize int64) *ParseError {
	return &ParseError{
		Code:    CodeFileTooLarge,
		Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", size, maxSize),
		Details: map[string]any{"size": size, "maxSize": maxSize},
	}
}

func errInvalidType(mimeType string) *ParseError {
	return &ParseError{
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("file type %s not allowed", mimeType),
		Details: map[string]any{"type": mimeType},
	}
}

func errMimeMismatch(declared, actual string) *ParseError {
	return &ParseError{
		Code:    CodeMimeMismatch,
		Message: fmt.Sprintf("file MIME type mismatch: declared %s, actual %s", declared, actual),
		Details: map[string]any{"declared": declared, "actual": actual},
	}
}

func errMalwareDetected(signature string) *ParseError {
	if signature == "" {
		signature = "unknown threat"
	}
	return &ParseError{
		Code:    CodeMalwareDetected,
		Message: fmt.Sprintf("malware detected: %s", signature),
		Details: map[string]any{"signature": signature},
	}
}

func errHasMacros() *ParseError {
	return &ParseError{
		Code:    CodeHasMacros,
		Message: "document contains macros (VBA code) which are not allowed",
	}
}

func errCorrupted(reason string) *ParseError {
	if reason == "" {
		reason = "unknown"
	}
	return &ParseError{
		Code:    CodeCorrupted,
		Message: fmt.Sprintf("file is corrupted or invalid: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

func errExtractFailed(reason string) *ParseError {
	return &ParseError{
		Code:        CodeExtractFailed,
		Message:     fmt.Sprintf("structured CV extraction failed: %s", reason),
		Recoverable: true,
	}
}
