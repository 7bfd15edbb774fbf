package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

// manualReviewRationale is returned whenever automatic grading cannot
// produce a score. The zero score is a safe floor, not a judgment.
const manualReviewRationale = "Automatic grading failed; manual review required."

type Grader interface {
	Grade(ctx context.Context, q models.AssessmentQuestion, answer models.AssessmentAnswer) models.GradeResult
}

type grader struct {
	llm        TextGenerator
	prompts    *PromptBuilder
	maxRetries int
	logger     *zap.Logger
}

func NewGrader(llm TextGenerator, maxRetries int, logger *zap.Logger) Grader {
	return &grader{
		llm:        llm,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Grade never returns an error: choice questions are deterministic, and a
// failed LLM grade degrades to zero points with a manual-review rationale.
func (g *grader) Grade(ctx context.Context, q models.AssessmentQuestion, answer models.AssessmentAnswer) models.GradeResult {
	switch q.Type {
	case models.QuestionMCQ:
		return gradeMCQ(q, answer)
	case models.QuestionMultiSelect:
		return gradeMultiSelect(q, answer)
	case models.QuestionShortText, models.QuestionLongText, models.QuestionCode:
		return g.gradeWithLLM(ctx, q, answer)
	default:
		g.logger.Warn("unknown question type", zap.String("type", string(q.Type)))
		return models.GradeResult{Score: 0, Rationale: manualReviewRationale}
	}
}

// gradeMCQ is all or nothing: full points iff exactly the correct choice is
// selected.
func gradeMCQ(q models.AssessmentQuestion, answer models.AssessmentAnswer) models.GradeResult {
	if len(q.CorrectIndexes) != 1 {
		return models.GradeResult{Score: 0, Rationale: manualReviewRationale}
	}
	if len(answer.SelectedIndexes) == 1 && answer.SelectedIndexes[0] == q.CorrectIndexes[0] {
		return models.GradeResult{Score: q.Points, Rationale: "Correct answer."}
	}
	return models.GradeResult{Score: 0, Rationale: "Incorrect answer."}
}

// gradeMultiSelect gives partial credit: (correct - incorrect) / total
// correct, floored at zero, times the question's points.
func gradeMultiSelect(q models.AssessmentQuestion, answer models.AssessmentAnswer) models.GradeResult {
	if len(q.CorrectIndexes) == 0 {
		return models.GradeResult{Score: 0, Rationale: manualReviewRationale}
	}

	correctSet := make(map[int]bool, len(q.CorrectIndexes))
	for _, idx := range q.CorrectIndexes {
		correctSet[idx] = true
	}

	correctSelected := 0
	incorrectSelected := 0
	for _, idx := range answer.SelectedIndexes {
		if correctSet[idx] {
			correctSelected++
		} else {
			incorrectSelected++
		}
	}

	fraction := float64(correctSelected-incorrectSelected) / float64(len(q.CorrectIndexes))
	if fraction < 0 {
		fraction = 0
	}

	return models.GradeResult{
		Score: fraction * q.Points,
		Rationale: fmt.Sprintf("Selected %d of %d correct options, %d incorrect.",
			correctSelected, len(q.CorrectIndexes), incorrectSelected),
	}
}

func (g *grader) gradeWithLLM(ctx context.Context, q models.AssessmentQuestion, answer models.AssessmentAnswer) models.GradeResult {
	if answer.Text == "" {
		return models.GradeResult{Score: 0, Rationale: "No answer provided."}
	}

	var prompt string
	if q.Type == models.QuestionCode {
		prompt = g.prompts.BuildCodeGradingPrompt(q, answer.Text)
	} else {
		prompt = g.prompts.BuildTextGradingPrompt(q, answer.Text)
	}

	response, err := g.llm.GenerateTextWithRetry(ctx, prompt, 0.2, g.maxRetries)
	if err != nil {
		g.logger.Error("llm grading call failed", zap.String("question", q.Title), zap.Error(err))
		return models.GradeResult{Score: 0, Rationale: manualReviewRationale}
	}

	var result models.GradeResult
	if err := parseJSONResponse(response, &result); err != nil {
		g.logger.Error("llm grading returned malformed json", zap.String("question", q.Title), zap.Error(err))
		return models.GradeResult{Score: 0, Rationale: manualReviewRationale}
	}

	if result.Score < 0 {
		result.Score = 0
	} else if result.Score > q.Points {
		result.Score = q.Points
	}
	if result.Rationale == "" {
		result.Rationale = manualReviewRationale
	}

	return result
}
