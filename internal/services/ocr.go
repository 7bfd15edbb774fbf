package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/config"
	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

// tesseractLangs maps a locale tag to a tesseract language code. Unmapped
// locales fall back to English.
var tesseractLangs = map[string]string{
	"en": "eng",
	"sk": "slk",
	"cs": "ces",
	"de": "deu",
	"pl": "pol",
}

func localeToTesseractLang(locale string) string {
	code := strings.ToLower(strings.SplitN(locale, "-", 2)[0])
	if lang, ok := tesseractLangs[code]; ok {
		return lang
	}
	return "eng"
}

// OCRClient is the stage-2 boundary. CallOCR never fails: every failure mode
// is represented in the returned OCRResult so the pipeline can decide whether
// stage 3 runs.
type OCRClient interface {
	CallOCR(ctx context.Context, buf []byte, meta models.DocumentMeta, traceID string) models.OCRResult
}

type ocrClient struct {
	cfg    config.OCRConfig
	logger *zap.Logger
}

func NewOCRClient(cfg config.OCRConfig, logger *zap.Logger) OCRClient {
	return &ocrClient{cfg: cfg, logger: logger}
}

func (o *ocrClient) CallOCR(ctx context.Context, buf []byte, meta models.DocumentMeta, traceID string) models.OCRResult {
	start := time.Now()

	if !o.cfg.Enabled {
		o.logger.Info("OCR disabled, skipping", zap.String("trace_id", traceID))
		return models.OCRResult{
			Method:  "ocr_disabled",
			Success: false,
			Error:   "OCR is disabled",
		}
	}

	// Unique temp file per invocation; concurrent pipelines never collide.
	tempID := fmt.Sprintf("%s-%d", traceID, time.Now().UnixNano())
	ext := "pdf"
	if i := strings.LastIndex(meta.Filename, "."); i >= 0 && i < len(meta.Filename)-1 {
		ext = meta.Filename[i+1:]
	}
	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("cv-%s.%s", tempID, ext))

	if err := os.WriteFile(tempPath, buf, 0o600); err != nil {
		o.logger.Error("OCR temp file write failed", zap.String("trace_id", traceID), zap.Error(err))
		return ocrFailure(err)
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			o.logger.Warn("failed to delete OCR temp file",
				zap.String("trace_id", traceID), zap.String("path", tempPath), zap.Error(err))
		}
	}()

	lang := localeToTesseractLang(meta.Locale)

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	var cmd *exec.Cmd
	if o.cfg.UseDocker {
		mountedName := fmt.Sprintf("%s.%s", tempID, ext)
		cmd = exec.CommandContext(ctx, "docker",
			"run", "--rm",
			"-v", fmt.Sprintf("%s:/input/%s", tempPath, mountedName),
			o.cfg.DockerImage,
			"--file", "/input/"+mountedName,
			"--lang", lang,
			"--output-json",
		)
	} else {
		cmd = exec.CommandContext(ctx, "python3",
			o.cfg.ParserPath,
			"--file", tempPath,
			"--lang", lang,
			"--output-json",
		)
	}

	stdout, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		o.logger.Error("OCR process failed",
			zap.String("trace_id", traceID),
			zap.String("stderr", stderr),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return ocrFailure(err)
	}

	var result models.OCRResult
	if err := json.Unmarshal(stdout, &result); err != nil {
		o.logger.Error("OCR output parse failed", zap.String("trace_id", traceID), zap.Error(err))
		return ocrFailure(err)
	}

	o.logger.Info("OCR processing complete",
		zap.String("trace_id", traceID),
		zap.String("method", result.Method),
		zap.Int("length", result.Length),
		zap.Duration("duration", time.Since(start)),
	)

	return result
}

func ocrFailure(err error) models.OCRResult {
	return models.OCRResult{
		Method:  "ocr_error",
		Success: false,
		Error:   err.Error(),
	}
}
