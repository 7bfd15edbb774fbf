package services

import (
	"strings"
	"testing"
)

func TestChunkTextShortInput(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.ChunkText("short resume text", 1000, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk, got %d", len(chunks))
	}
	if chunks[0] != "short resume text" {
		t.Fatalf("unexpected chunk content: %q", chunks[0])
	}
}

func TestChunkTextSplitsParagraphs(t *testing.T) {
	chunker := NewTextChunker()

	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("word ", 60)
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := chunker.ChunkText(text, 500, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 500+50+2 {
			t.Fatalf("chunk %d exceeds size bound: %d chars", i, len(chunk))
		}
	}
}

func TestChunkTextOverlap(t *testing.T) {
	chunker := NewTextChunker()

	text := strings.Repeat("alpha beta gamma delta. ", 100)
	chunks := chunker.ChunkText(text, 300, 60)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		tail := getLastNChars(chunks[i-1], 60)
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not start with the previous chunk's tail", i)
		}
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker()

	if chunks := chunker.ChunkText("", 1000, 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := chunker.ChunkText("\n\n\n\n", 1000, 100); len(chunks) != 0 {
		t.Fatalf("expected no chunks for whitespace text, got %d", len(chunks))
	}
}

func TestGetLastNChars(t *testing.T) {
	if got := getLastNChars("hello world", 5); got != "world" {
		t.Fatalf("expected %q, got %q", "world", got)
	}
	if got := getLastNChars("hi", 10); got != "hi" {
		t.Fatalf("short input should be returned whole, got %q", got)
	}
	if got := getLastNChars("hello", 0); got != "" {
		t.Fatalf("zero n should return empty, got %q", got)
	}
}
