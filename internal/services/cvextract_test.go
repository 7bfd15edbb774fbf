package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// stubLLM satisfies TextGenerator for extractor, matcher and grader tests.
type stubLLM struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubLLM) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return s.GenerateText(ctx, prompt, temperature)
}

const validCVJSON = `{
	"personal": {"fullName": "Jana Novakova", "email": "jana@example.com", "location": "Bratislava"},
	"summary": "Backend engineer with Go and Postgres experience.",
	"experiences": [
		{"title": "Backend Engineer", "company": "Acme", "startDate": "2020-03", "endDate": "present", "description": "Built APIs in Go."}
	],
	"education": [
		{"degree": "Master of Computer Science", "institution": "FIIT STU", "startDate": "2014-09", "endDate": "2019-06"}
	],
	"skills": ["Go", "PostgreSQL", "Docker"],
	"languages": [{"name": "Slovak", "level": "NATIVE"}],
	"certifications": [],
	"projects": []
}`

func TestExtractCVParsesCleanResponse(t *testing.T) {
	llm := &stubLLM{response: validCVJSON}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	cv, err := e.ExtractCV(context.Background(), "full resume text here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cv.Personal == nil || cv.Personal.FullName != "Jana Novakova" {
		t.Fatalf("unexpected personal info: %+v", cv.Personal)
	}
	if len(cv.Experiences) != 1 || cv.Experiences[0].EndDate != "present" {
		t.Fatalf("unexpected experiences: %+v", cv.Experiences)
	}
	if len(cv.Skills) != 3 {
		t.Fatalf("expected 3 skills, got %d", len(cv.Skills))
	}
	if llm.lastPrompt == "" {
		t.Fatal("expected prompt to be sent")
	}
}

func TestExtractCVStripsMarkdownFences(t *testing.T) {
	llm := &stubLLM{response: "Here is the extraction:\n```json\n" + validCVJSON + "\n```\nDone."}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	cv, err := e.ExtractCV(context.Background(), "resume text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cv.Summary == "" {
		t.Fatal("expected summary to survive fence stripping")
	}
}

func TestExtractCVRejectsMalformedJSON(t *testing.T) {
	llm := &stubLLM{response: "I could not parse this resume, sorry."}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	_, err := e.ExtractCV(context.Background(), "resume text")
	if err == nil {
		t.Fatal("expected malformed response to be rejected")
	}

	var perr *ParseError
	if !errors.As(err, &perr) || perr.Code != CodeExtractFailed {
		t.Fatalf("expected %s, got %v", CodeExtractFailed, err)
	}
	if !perr.Recoverable {
		t.Fatal("extraction failures should be retryable")
	}
}

func TestExtractCVRejectsInvalidDates(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{
			"bad month",
			`{"experiences": [{"title": "Dev", "company": "Acme", "startDate": "2020-13"}], "education": [], "skills": []}`,
		},
		{
			"free-form date",
			`{"experiences": [{"title": "Dev", "company": "Acme", "startDate": "March 2020"}], "education": [], "skills": []}`,
		},
		{
			"present as start date",
			`{"experiences": [{"title": "Dev", "company": "Acme", "startDate": "present"}], "education": [], "skills": []}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &stubLLM{response: tc.json}
			e := NewCVExtractor(llm, 3, zap.NewNop())

			if _, err := e.ExtractCV(context.Background(), "resume"); err == nil {
				t.Fatal("expected invalid date to be rejected")
			}
		})
	}
}

func TestExtractCVRejectsInvalidLanguageLevel(t *testing.T) {
	llm := &stubLLM{response: `{"experiences": [], "education": [], "skills": [], "languages": [{"name": "German", "level": "OKAY"}]}`}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	if _, err := e.ExtractCV(context.Background(), "resume"); err == nil {
		t.Fatal("expected invalid language level to be rejected")
	}
}

func TestExtractCVRejectsEmptyInput(t *testing.T) {
	e := NewCVExtractor(&stubLLM{response: validCVJSON}, 3, zap.NewNop())

	if _, err := e.ExtractCV(context.Background(), "   \n\t "); err == nil {
		t.Fatal("expected empty input to be rejected")
	}
}

func TestExtractCVPropagatesLLMFailure(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("model overloaded")}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	_, err := e.ExtractCV(context.Background(), "resume text")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Code != CodeExtractFailed {
		t.Fatalf("expected %s, got %v", CodeExtractFailed, err)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced object", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounded by prose", `The result is {"a": 1} as requested.`, `{"a": 1}`},
		{"array", `[1, 2, 3]`, `[1, 2, 3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Fatalf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSummarizeCVReturnsTrimmedBullets(t *testing.T) {
	bullets := "- Senior Go engineer with 8 years of experience\n- Led a platform team of five\n- Strong Kubernetes and AWS background"
	llm := &stubLLM{response: "\n" + bullets + "\n"}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	summary, err := e.SummarizeCV(context.Background(), "John Doe, Senior Go Engineer...")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != bullets {
		t.Fatalf("expected trimmed bullet text, got %q", summary)
	}
	if !strings.Contains(llm.lastPrompt, "John Doe") {
		t.Fatal("prompt must include the cv text")
	}
}

func TestSummarizeCVRejectsEmptyInput(t *testing.T) {
	llm := &stubLLM{response: "- something"}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	if _, err := e.SummarizeCV(context.Background(), "   \n"); err == nil {
		t.Fatal("expected empty cv text to be rejected")
	}
	if llm.calls != 0 {
		t.Fatalf("llm must not be called for empty input, got %d calls", llm.calls)
	}
}

func TestSummarizeCVPropagatesLLMFailure(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("quota exceeded")}
	e := NewCVExtractor(llm, 3, zap.NewNop())

	_, err := e.SummarizeCV(context.Background(), "some cv text")
	if err == nil {
		t.Fatal("expected llm failure to propagate")
	}

	var perr *ParseError
	if !errors.As(err, &perr) || perr.Code != CodeExtractFailed {
		t.Fatalf("expected %s error, got %v", CodeExtractFailed, err)
	}
}
