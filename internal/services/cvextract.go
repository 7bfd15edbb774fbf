package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

// yearMonthRe matches the canonical YYYY-MM date format.
var yearMonthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type CVExtractor interface {
	ExtractCV(ctx context.Context, cvText string) (*models.ExtractedCV, error)
	SummarizeCV(ctx context.Context, cvText string) (string, error)
}

type cvExtractor struct {
	llm        TextGenerator
	prompts    *PromptBuilder
	maxRetries int
	logger     *zap.Logger
}

func NewCVExtractor(llm TextGenerator, maxRetries int, logger *zap.Logger) CVExtractor {
	return &cvExtractor{
		llm:        llm,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// ExtractCV turns raw CV text into the structured schema. Responses that do
// not conform are rejected rather than repaired.
func (e *cvExtractor) ExtractCV(ctx context.Context, cvText string) (*models.ExtractedCV, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, errExtractFailed("empty cv text")
	}

	prompt := e.prompts.BuildCVExtractionPrompt(cvText)

	response, err := e.llm.GenerateTextWithRetry(ctx, prompt, 0.1, e.maxRetries)
	if err != nil {
		e.logger.Error("cv extraction llm call failed", zap.Error(err))
		return nil, errExtractFailed(err.Error())
	}

	var cv models.ExtractedCV
	if err := parseJSONResponse(response, &cv); err != nil {
		e.logger.Error("cv extraction returned malformed json", zap.Error(err))
		return nil, errExtractFailed(err.Error())
	}

	if err := validateExtractedCV(&cv); err != nil {
		e.logger.Error("cv extraction schema validation failed", zap.Error(err))
		return nil, errExtractFailed(err.Error())
	}

	return &cv, nil
}

// SummarizeCV produces a short bullet-point summary of the raw CV text for
// recruiter screens. The output is plain text, not structured data.
func (e *cvExtractor) SummarizeCV(ctx context.Context, cvText string) (string, error) {
	if strings.TrimSpace(cvText) == "" {
		return "", errExtractFailed("empty cv text")
	}

	prompt := e.prompts.BuildCVSummaryPrompt(cvText)

	response, err := e.llm.GenerateTextWithRetry(ctx, prompt, 0.3, e.maxRetries)
	if err != nil {
		e.logger.Error("cv summary llm call failed", zap.Error(err))
		return "", errExtractFailed(err.Error())
	}

	summary := strings.TrimSpace(response)
	if summary == "" {
		return "", errExtractFailed("empty summary response")
	}
	return summary, nil
}

func validateExtractedCV(cv *models.ExtractedCV) error {
	for i, exp := range cv.Experiences {
		if strings.TrimSpace(exp.Title) == "" || strings.TrimSpace(exp.Company) == "" {
			return fmt.Errorf("experience %d missing title or company", i)
		}
		if err := validateDate(exp.StartDate, false); err != nil {
			return fmt.Errorf("experience %d startDate: %w", i, err)
		}
		if err := validateDate(exp.EndDate, true); err != nil {
			return fmt.Errorf("experience %d endDate: %w", i, err)
		}
	}

	for i, edu := range cv.Education {
		if strings.TrimSpace(edu.Institution) == "" {
			return fmt.Errorf("education %d missing institution", i)
		}
		if err := validateDate(edu.StartDate, false); err != nil {
			return fmt.Errorf("education %d startDate: %w", i, err)
		}
		if err := validateDate(edu.EndDate, true); err != nil {
			return fmt.Errorf("education %d endDate: %w", i, err)
		}
	}

	for i, lang := range cv.Languages {
		if strings.TrimSpace(lang.Name) == "" {
			return fmt.Errorf("language %d missing name", i)
		}
		if lang.Level != "" && !lang.Level.Valid() {
			return fmt.Errorf("language %d has invalid level %q", i, lang.Level)
		}
	}

	for i, cert := range cv.Certifications {
		if strings.TrimSpace(cert.Name) == "" {
			return fmt.Errorf("certification %d missing name", i)
		}
	}

	return nil
}

// validateDate accepts YYYY-MM or empty; "present" is only legal as an end date.
func validateDate(date string, allowPresent bool) error {
	if date == "" {
		return nil
	}
	if allowPresent && strings.EqualFold(date, "present") {
		return nil
	}
	if !yearMonthRe.MatchString(date) {
		return fmt.Errorf("invalid date %q, want YYYY-MM", date)
	}
	return nil
}

func parseJSONResponse(response string, target interface{}) error {
	// LLM might wrap the payload in markdown fences.
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
