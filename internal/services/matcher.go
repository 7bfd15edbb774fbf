package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

// ScoringVersion tags every stored match score. Bump when weights or any
// scoring leg change so stale snapshots can be recomputed.
const ScoringVersion = "1.0.0"

// Hybrid score weights. They must sum to 1.
const (
	weightBM25   = 0.3
	weightVector = 0.4
	weightLLM    = 0.3
)

// educationRank orders degree levels for minimum-requirement checks.
var educationRank = map[string]int{
	"high school": 1,
	"associate":   2,
	"bachelor":    3,
	"master":      4,
	"phd":         5,
}

// MatchScorer computes hybrid scores. Embeddings are caller inputs: the
// scorer never talks to the embedding provider, so stored vectors can be
// reused and a batch embeds the job exactly once.
type MatchScorer interface {
	Match(ctx context.Context, cv *models.ExtractedCV, cvEmbedding, jobEmbedding []float32, job models.JobRequirements) (*models.MatchScore, error)
	MatchBatch(ctx context.Context, cvs []*models.ExtractedCV, cvEmbeddings [][]float32, jobEmbedding []float32, job models.JobRequirements) ([]*models.MatchScore, error)
}

type matchScorer struct {
	llm              TextGenerator
	prompts          *PromptBuilder
	maxRetries       int
	batchConcurrency int
	logger           *zap.Logger
	now              func() time.Time
}

func NewMatchScorer(llm TextGenerator, maxRetries, batchConcurrency int, logger *zap.Logger) MatchScorer {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	return &matchScorer{
		llm:              llm,
		prompts:          NewPromptBuilder(),
		maxRetries:       maxRetries,
		batchConcurrency: batchConcurrency,
		logger:           logger,
		now:              time.Now,
	}
}

type llmJudgeResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// Match computes the hybrid score for one candidate against one job. All
// three legs run on every call; a single failing leg fails the match rather
// than silently re-weighting.
func (m *matchScorer) Match(ctx context.Context, cv *models.ExtractedCV, cvEmbedding, jobEmbedding []float32, job models.JobRequirements) (*models.MatchScore, error) {
	if cv == nil {
		return nil, fmt.Errorf("nil cv")
	}
	if len(job.RequiredSkills) == 0 {
		return nil, fmt.Errorf("job has no required skills")
	}

	bm25, matching, missing := keywordScore(cv, job.RequiredSkills)

	vector, err := vectorScore(cvEmbedding, jobEmbedding)
	if err != nil {
		return nil, fmt.Errorf("vector leg failed: %w", err)
	}

	judge, err := m.llmJudge(ctx, cv, job)
	if err != nil {
		return nil, fmt.Errorf("llm leg failed: %w", err)
	}
	llmScore := clamp01(judge.Score / 100)

	combined := weightBM25*bm25 + weightVector*vector + weightLLM*llmScore
	final := int(math.Round(combined * 100))
	if final < 0 {
		final = 0
	} else if final > 100 {
		final = 100
	}

	years := totalExperienceMonths(cv.Experiences, m.now()) / 12

	evidence := models.MatchEvidence{
		MatchingSkills:     matching,
		MissingSkills:      missing,
		RelevantExperience: relevantExperience(cv, job.RequiredSkills),
		EducationMatch:     educationMatches(cv.Education, job.RequiredEducationLevel),
		LocationMatch:      locationMatches(cv, job.Location),
		SalaryMatch:        job.SalaryMin != nil && job.SalaryMax != nil,
		YearsOfExperience:  years,
		Reasoning:          judge.Reasoning,
	}

	m.logger.Debug("match scored",
		zap.Int("score", final),
		zap.Float64("bm25", bm25),
		zap.Float64("vector", vector),
		zap.Float64("llm", llmScore))

	return &models.MatchScore{
		Score0To100: final,
		BM25Score:   bm25,
		VectorScore: vector,
		LLMScore:    llmScore,
		Evidence:    evidence,
		Version:     ScoringVersion,
	}, nil
}

// MatchBatch scores many candidates concurrently. Results keep input order;
// the first error cancels the remaining work.
func (m *matchScorer) MatchBatch(ctx context.Context, cvs []*models.ExtractedCV, cvEmbeddings [][]float32, jobEmbedding []float32, job models.JobRequirements) ([]*models.MatchScore, error) {
	if len(cvEmbeddings) != len(cvs) {
		return nil, fmt.Errorf("embedding count mismatch: %d cvs, %d embeddings", len(cvs), len(cvEmbeddings))
	}
	results := make([]*models.MatchScore, len(cvs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.batchConcurrency)

	for i, cv := range cvs {
		g.Go(func() error {
			score, err := m.Match(gctx, cv, cvEmbeddings[i], jobEmbedding, job)
			if err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}
			results[i] = score
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// keywordScore is the lexical leg: the fraction of required skills present
// anywhere in the candidate's text, with matched and missing skill lists.
func keywordScore(cv *models.ExtractedCV, requiredSkills []string) (float64, []string, []string) {
	corpus := strings.ToLower(candidateCorpus(cv))

	matching := make([]string, 0, len(requiredSkills))
	missing := make([]string, 0)
	for _, skill := range requiredSkills {
		if strings.Contains(corpus, strings.ToLower(skill)) {
			matching = append(matching, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	if len(requiredSkills) == 0 {
		return 0, matching, missing
	}
	return float64(len(matching)) / float64(len(requiredSkills)), matching, missing
}

func candidateCorpus(cv *models.ExtractedCV) string {
	var sb strings.Builder
	sb.WriteString(cv.Summary)
	for _, exp := range cv.Experiences {
		sb.WriteString(" ")
		sb.WriteString(exp.Title)
		sb.WriteString(" ")
		sb.WriteString(exp.Description)
		sb.WriteString(" ")
		sb.WriteString(strings.Join(exp.Skills, " "))
	}
	sb.WriteString(" ")
	sb.WriteString(strings.Join(cv.Skills, " "))
	for _, proj := range cv.Projects {
		sb.WriteString(" ")
		sb.WriteString(proj.Description)
		sb.WriteString(" ")
		sb.WriteString(strings.Join(proj.Technologies, " "))
	}
	return sb.String()
}

// JobCorpus is the canonical embedding input for a job posting. Callers
// embed it once and pass the vector to Match or MatchBatch.
func JobCorpus(job models.JobRequirements) string {
	return job.Title + " " + job.Description + " " + strings.Join(job.RequiredSkills, " ")
}

func vectorScore(cvEmbedding, jobEmbedding []float32) (float64, error) {
	cos, err := cosineSimilarity(cvEmbedding, jobEmbedding)
	if err != nil {
		return 0, err
	}
	return clamp01(cos), nil
}

// cosineSimilarity errors on dimension mismatch; vectors from different
// embedding models must never be compared.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

func (m *matchScorer) llmJudge(ctx context.Context, cv *models.ExtractedCV, job models.JobRequirements) (*llmJudgeResult, error) {
	prompt := m.prompts.BuildMatchJudgePrompt(condensedCV(cv), job)

	response, err := m.llm.GenerateTextWithRetry(ctx, prompt, 0.2, m.maxRetries)
	if err != nil {
		return nil, err
	}

	var result llmJudgeResult
	if err := parseJSONResponse(response, &result); err != nil {
		return nil, err
	}
	if result.Score < 0 || result.Score > 100 {
		return nil, fmt.Errorf("judge score %.1f out of range", result.Score)
	}
	return &result, nil
}

// condensedCV keeps the judge prompt small: the three most recent roles,
// fifteen skills and two education entries.
func condensedCV(cv *models.ExtractedCV) string {
	var sb strings.Builder

	if cv.Summary != "" {
		sb.WriteString("Summary: " + cv.Summary + "\n")
	}

	experiences := cv.Experiences
	if len(experiences) > 3 {
		experiences = experiences[:3]
	}
	for _, exp := range experiences {
		period := exp.StartDate
		if exp.EndDate != "" {
			period += " to " + exp.EndDate
		}
		sb.WriteString(fmt.Sprintf("Experience: %s at %s (%s). %s\n", exp.Title, exp.Company, period, exp.Description))
	}

	skills := cv.Skills
	if len(skills) > 15 {
		skills = skills[:15]
	}
	if len(skills) > 0 {
		sb.WriteString("Skills: " + strings.Join(skills, ", ") + "\n")
	}

	education := cv.Education
	if len(education) > 2 {
		education = education[:2]
	}
	for _, edu := range education {
		sb.WriteString(fmt.Sprintf("Education: %s, %s\n", edu.Degree, edu.Institution))
	}

	return sb.String()
}

// maxRelevantExperience bounds the evidence list; a long career should not
// bloat the stored snapshot.
const maxRelevantExperience = 3

// relevantExperience lists up to maxRelevantExperience roles whose title or
// description mentions any required skill.
func relevantExperience(cv *models.ExtractedCV, requiredSkills []string) []string {
	relevant := make([]string, 0, maxRelevantExperience)
	for _, exp := range cv.Experiences {
		if len(relevant) == maxRelevantExperience {
			break
		}
		haystack := strings.ToLower(exp.Title + " " + exp.Description + " " + strings.Join(exp.Skills, " "))
		for _, skill := range requiredSkills {
			if strings.Contains(haystack, strings.ToLower(skill)) {
				relevant = append(relevant, fmt.Sprintf("%s at %s", exp.Title, exp.Company))
				break
			}
		}
	}
	return relevant
}

// totalExperienceMonths sums the month span of every role. Overlapping roles
// double-count; the evidence is an estimate, not payroll.
func totalExperienceMonths(experiences []models.Experience, now time.Time) int {
	total := 0
	for _, exp := range experiences {
		start, ok := parseYearMonth(exp.StartDate)
		if !ok {
			continue
		}
		var end time.Time
		if exp.EndDate == "" || strings.EqualFold(exp.EndDate, "present") || exp.Current {
			end = now
		} else if parsed, ok := parseYearMonth(exp.EndDate); ok {
			end = parsed
		} else {
			continue
		}

		months := int(end.Year()-start.Year())*12 + int(end.Month()-start.Month())
		if months > 0 {
			total += months
		}
	}
	return total
}

func parseYearMonth(date string) (time.Time, bool) {
	t, err := time.Parse("2006-01", date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// educationMatches reports whether any degree meets the required minimum
// level. An unrecognized requirement never matches; no requirement always
// matches.
func educationMatches(education []models.Education, required string) bool {
	if required == "" {
		return true
	}
	requiredRank, ok := educationRank[strings.ToLower(required)]
	if !ok {
		return false
	}
	for _, edu := range education {
		degree := strings.ToLower(edu.Degree)
		for level, rank := range educationRank {
			if strings.Contains(degree, level) && rank >= requiredRank {
				return true
			}
		}
	}
	return false
}

// locationMatches uses strict equality after case folding. Remote-friendly
// and radius matching are left to the caller's job model.
func locationMatches(cv *models.ExtractedCV, jobLocation string) bool {
	if jobLocation == "" {
		return true
	}
	if cv.Personal == nil || cv.Personal.Location == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(cv.Personal.Location), strings.TrimSpace(jobLocation))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
