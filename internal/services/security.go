package services

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

// FailurePolicy decides what happens when a security check cannot run at all
// (daemon unreachable, sniffing failure). The check outcome itself is never
// subject to policy: a positive malware hit or a confirmed mismatch always
// rejects.
type FailurePolicy int

const (
	// FailOpen lets the document through with a warning log. Used for the
	// antivirus daemon and MIME sniffing, where availability is preferred
	// over strict enforcement.
	FailOpen FailurePolicy = iota
	// FailClosed rejects the document.
	FailClosed
)

// VirusScanner is the antivirus daemon boundary.
type VirusScanner interface {
	// Scan reports the matched signature names, empty when clean. A non-nil
	// error means the scan could not run, not that the file is infected.
	Scan(ctx context.Context, buf []byte) ([]string, error)
}

// MimeSniffer detects a MIME type from file content. The production
// implementation wraps the mimetype package; tests substitute their own.
type MimeSniffer func(buf []byte) (string, error)

type SecurityGateConfig struct {
	MaxFileSize     int64
	AntivirusPolicy FailurePolicy
	SniffPolicy     FailurePolicy
}

// SecurityGate runs the three pre-parse checks in sequence: size, MIME
// verification, malware scan. The first failure short-circuits the rest.
type SecurityGate struct {
	cfg     SecurityGateConfig
	scanner VirusScanner
	sniff   MimeSniffer
	logger  *zap.Logger
}

func NewSecurityGate(cfg SecurityGateConfig, scanner VirusScanner, logger *zap.Logger) *SecurityGate {
	return &SecurityGate{
		cfg:     cfg,
		scanner: scanner,
		sniff:   sniffWithMimetype,
		logger:  logger,
	}
}

func sniffWithMimetype(buf []byte) (string, error) {
	return mimetype.Detect(buf).String(), nil
}

// Check returns nil when the document may proceed to parsing. Any non-nil
// error is a *ParseError with a stable rejection code.
func (g *SecurityGate) Check(ctx context.Context, buf []byte, meta models.DocumentMeta) error {
	traceFields := []zap.Field{
		zap.String("filename", meta.Filename),
		zap.String("mime_type", meta.MimeType),
		zap.Int64("file_size", meta.FileSize),
	}
	g.logger.Debug("security check started", traceFields...)

	if meta.FileSize > g.cfg.MaxFileSize {
		return errFileTooLarge(meta.FileSize, g.cfg.MaxFileSize)
	}

	if err := g.verifyMimeType(buf, meta.MimeType); err != nil {
		return err
	}

	if err := g.scanForMalware(ctx, buf); err != nil {
		return err
	}

	g.logger.Debug("security check passed", traceFields...)
	return nil
}

func (g *SecurityGate) verifyMimeType(buf []byte, declared string) error {
	actual, err := g.sniff(buf)
	if err != nil {
		if g.cfg.SniffPolicy == FailClosed {
			return errMimeMismatch(declared, "unknown")
		}
		g.logger.Warn("MIME sniffing failed, allowing file", zap.Error(err))
		return nil
	}

	declaredNorm := normalizeMime(declared)
	actualNorm := normalizeMime(actual)

	if actualNorm == "" || actualNorm == "application/octet-stream" {
		// Sniffer could not recognize the content. Plain text has no magic
		// number, so a declared text/plain is the only acceptable case.
		if strings.HasPrefix(declaredNorm, "text/plain") {
			return nil
		}
		return errMimeMismatch(declared, "unknown")
	}

	// A DOCX container is physically a ZIP archive.
	isDocx := strings.Contains(declaredNorm, "wordprocessing") &&
		(actualNorm == "application/zip" || strings.Contains(actualNorm, "wordprocessing"))

	isPdf := declaredNorm == "application/pdf" && actualNorm == "application/pdf"

	isText := strings.HasPrefix(declaredNorm, "text/plain") && strings.HasPrefix(actualNorm, "text/plain")

	if !isDocx && !isPdf && !isText && declaredNorm != actualNorm {
		return errMimeMismatch(declared, actual)
	}
	return nil
}

func (g *SecurityGate) scanForMalware(ctx context.Context, buf []byte) error {
	if g.scanner == nil {
		return nil
	}

	signatures, err := g.scanner.Scan(ctx, buf)
	if err != nil {
		if g.cfg.AntivirusPolicy == FailClosed {
			return errMalwareDetected("scan unavailable")
		}
		g.logger.Warn("antivirus unreachable, allowing file", zap.Error(err))
		return nil
	}

	if len(signatures) > 0 {
		g.logger.Warn("malware detected", zap.Strings("signatures", signatures))
		return errMalwareDetected(strings.Join(signatures, ", "))
	}
	return nil
}

func normalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	return strings.ReplaceAll(mime, " ", "")
}
