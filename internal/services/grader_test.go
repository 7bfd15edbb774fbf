package services

import (
	"context"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

func mcqQuestion() models.AssessmentQuestion {
	return models.AssessmentQuestion{
		Type:           models.QuestionMCQ,
		Title:          "Which HTTP status means Not Found?",
		Choices:        []string{"200", "301", "404", "500"},
		CorrectIndexes: []int{2},
		Points:         5,
	}
}

func TestGradeMCQ(t *testing.T) {
	g := NewGrader(&stubLLM{}, 3, zap.NewNop())
	q := mcqQuestion()

	correct := g.Grade(context.Background(), q, models.AssessmentAnswer{SelectedIndexes: []int{2}})
	if correct.Score != 5 {
		t.Fatalf("expected full points for correct answer, got %v", correct.Score)
	}

	wrong := g.Grade(context.Background(), q, models.AssessmentAnswer{SelectedIndexes: []int{1}})
	if wrong.Score != 0 {
		t.Fatalf("expected zero for wrong answer, got %v", wrong.Score)
	}

	multi := g.Grade(context.Background(), q, models.AssessmentAnswer{SelectedIndexes: []int{1, 2}})
	if multi.Score != 0 {
		t.Fatalf("MCQ with multiple selections must score zero, got %v", multi.Score)
	}

	empty := g.Grade(context.Background(), q, models.AssessmentAnswer{})
	if empty.Score != 0 {
		t.Fatalf("expected zero for no selection, got %v", empty.Score)
	}
}

func TestGradeMultiSelect(t *testing.T) {
	g := NewGrader(&stubLLM{}, 3, zap.NewNop())
	q := models.AssessmentQuestion{
		Type:           models.QuestionMultiSelect,
		Title:          "Select the relational databases",
		Choices:        []string{"PostgreSQL", "Redis", "MySQL", "Kafka"},
		CorrectIndexes: []int{0, 2},
		Points:         10,
	}

	cases := []struct {
		name     string
		selected []int
		want     float64
	}{
		{"all correct", []int{0, 2}, 10},
		{"half correct", []int{0}, 5},
		{"one correct one wrong cancels", []int{0, 1}, 0},
		{"more wrong than right floors at zero", []int{1, 3}, 0},
		{"everything selected", []int{0, 1, 2, 3}, 0},
		{"nothing selected", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := g.Grade(context.Background(), q, models.AssessmentAnswer{SelectedIndexes: tc.selected})
			if math.Abs(result.Score-tc.want) > 1e-9 {
				t.Fatalf("expected score %v, got %v", tc.want, result.Score)
			}
			if result.Score < 0 {
				t.Fatalf("score must never be negative, got %v", result.Score)
			}
		})
	}
}

func TestGradeTextWithLLM(t *testing.T) {
	llm := &stubLLM{response: `{"score": 7.5, "rationale": "Covers the main points but misses indexing."}`}
	g := NewGrader(llm, 3, zap.NewNop())

	q := models.AssessmentQuestion{
		Type:   models.QuestionLongText,
		Title:  "Explain database normalization",
		Rubric: "Full points for 3NF explanation with examples.",
		Points: 10,
	}

	result := g.Grade(context.Background(), q, models.AssessmentAnswer{Text: "Normalization splits tables..."})
	if result.Score != 7.5 {
		t.Fatalf("expected 7.5, got %v", result.Score)
	}
	if result.Rationale == "" {
		t.Fatal("expected rationale")
	}
}

func TestGradeCodeUsesTestCases(t *testing.T) {
	llm := &stubLLM{response: `{"score": 4, "rationale": "Handles the happy path only."}`}
	g := NewGrader(llm, 3, zap.NewNop())

	q := models.AssessmentQuestion{
		Type:     models.QuestionCode,
		Title:    "Reverse a string",
		Language: "go",
		TestCases: []models.TestCase{
			{Input: `"abc"`, ExpectedOutput: `"cba"`},
		},
		Points: 5,
	}

	result := g.Grade(context.Background(), q, models.AssessmentAnswer{Text: "func reverse(s string) string { ... }"})
	if result.Score != 4 {
		t.Fatalf("expected 4, got %v", result.Score)
	}
	if llm.lastPrompt == "" {
		t.Fatal("expected a grading prompt")
	}
}

func TestGradeClampsLLMScore(t *testing.T) {
	llm := &stubLLM{response: `{"score": 42, "rationale": "generous"}`}
	g := NewGrader(llm, 3, zap.NewNop())

	q := models.AssessmentQuestion{Type: models.QuestionShortText, Title: "Q", Points: 10}

	result := g.Grade(context.Background(), q, models.AssessmentAnswer{Text: "answer"})
	if result.Score != 10 {
		t.Fatalf("expected score clamped to 10, got %v", result.Score)
	}
}

func TestGradeLLMFailureScoresZero(t *testing.T) {
	llm := &stubLLM{err: fmt.Errorf("model unavailable")}
	g := NewGrader(llm, 3, zap.NewNop())

	q := models.AssessmentQuestion{Type: models.QuestionShortText, Title: "Q", Points: 10}

	result := g.Grade(context.Background(), q, models.AssessmentAnswer{Text: "answer"})
	if result.Score != 0 {
		t.Fatalf("failed grading must score zero, got %v", result.Score)
	}
	if result.Rationale != manualReviewRationale {
		t.Fatalf("expected manual review rationale, got %q", result.Rationale)
	}
}

func TestGradeMalformedLLMResponseScoresZero(t *testing.T) {
	llm := &stubLLM{response: "I think this deserves about seven points."}
	g := NewGrader(llm, 3, zap.NewNop())

	q := models.AssessmentQuestion{Type: models.QuestionShortText, Title: "Q", Points: 10}

	result := g.Grade(context.Background(), q, models.AssessmentAnswer{Text: "answer"})
	if result.Score != 0 || result.Rationale != manualReviewRationale {
		t.Fatalf("malformed response must degrade to manual review, got %+v", result)
	}
}

func TestGradeEmptyTextAnswer(t *testing.T) {
	llm := &stubLLM{response: `{"score": 5, "rationale": "should not be called"}`}
	g := NewGrader(llm, 3, zap.NewNop())

	q := models.AssessmentQuestion{Type: models.QuestionLongText, Title: "Q", Points: 10}

	result := g.Grade(context.Background(), q, models.AssessmentAnswer{})
	if result.Score != 0 {
		t.Fatalf("empty answer must score zero, got %v", result.Score)
	}
	if llm.calls != 0 {
		t.Fatal("LLM must not be called for an empty answer")
	}
}
