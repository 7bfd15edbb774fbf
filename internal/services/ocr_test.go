package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/config"
	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

func TestLocaleToTesseractLang(t *testing.T) {
	cases := []struct {
		locale string
		want   string
	}{
		{"en", "eng"},
		{"sk", "slk"},
		{"cs", "ces"},
		{"de", "deu"},
		{"pl", "pol"},
		{"en-US", "eng"},
		{"SK", "slk"},
		{"fr", "eng"},
		{"", "eng"},
	}

	for _, tc := range cases {
		if got := localeToTesseractLang(tc.locale); got != tc.want {
			t.Fatalf("localeToTesseractLang(%q) = %q, want %q", tc.locale, got, tc.want)
		}
	}
}

func TestCallOCRDisabled(t *testing.T) {
	client := NewOCRClient(config.OCRConfig{Enabled: false, Timeout: 30 * time.Second}, zap.NewNop())

	result := client.CallOCR(context.Background(), []byte("data"), models.DocumentMeta{Filename: "f.pdf"}, "trace")
	if result.Success {
		t.Fatal("disabled OCR must not report success")
	}
	if result.Error == "" {
		t.Fatal("disabled OCR must explain itself in the result")
	}
}

func TestCallOCRNeverPanicsOnMissingBinary(t *testing.T) {
	// Pointing at a nonexistent parser exercises the subprocess failure path.
	client := NewOCRClient(config.OCRConfig{
		Enabled:    true,
		Timeout:    2 * time.Second,
		UseDocker:  false,
		ParserPath: "/nonexistent/parser.py",
	}, zap.NewNop())

	result := client.CallOCR(context.Background(), []byte("data"), models.DocumentMeta{Filename: "f.pdf"}, "trace")
	if result.Success {
		t.Fatal("missing parser must not report success")
	}
	if result.Error == "" {
		t.Fatal("failure must be carried in the result")
	}
}
