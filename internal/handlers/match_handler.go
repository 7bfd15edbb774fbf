package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/repositories"
	"github.com/JanciNeviemProste/jobsphere/internal/services"
)

type MatchHandler struct {
	resumeRepo repositories.ResumeRepository
	matchRepo  repositories.MatchRepository
	matcher    services.MatchScorer
	embeddings services.EmbeddingProvider
	logger     *zap.Logger
}

func NewMatchHandler(
	resumeRepo repositories.ResumeRepository,
	matchRepo repositories.MatchRepository,
	matcher services.MatchScorer,
	embeddings services.EmbeddingProvider,
	logger *zap.Logger,
) *MatchHandler {
	return &MatchHandler{
		resumeRepo: resumeRepo,
		matchRepo:  matchRepo,
		matcher:    matcher,
		embeddings: embeddings,
		logger:     logger,
	}
}

// HandleMatch handles POST /match
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if req.Job.Title == "" || len(req.Job.RequiredSkills) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job title and required skills are required",
		})
	}

	resumeID, err := uuid.Parse(req.ResumeID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid resume_id format",
		})
	}

	cv, rawText, err := h.loadCandidate(resumeID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	vectors, err := h.embeddings.EmbedBatch(c.Context(), []string{services.JobCorpus(req.Job), rawText})
	if err != nil {
		h.logger.Error("embedding failed",
			zap.String("resume_id", req.ResumeID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "embedding failed",
		})
	}

	score, err := h.matcher.Match(c.Context(), cv, vectors[1], vectors[0], req.Job)
	if err != nil {
		h.logger.Error("match failed",
			zap.String("resume_id", req.ResumeID), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "match scoring failed",
		})
	}

	h.persist(resumeID, req.Job.Title, score)

	return c.JSON(models.MatchResponse{
		ResumeID: req.ResumeID,
		Match:    score,
	})
}

// HandleMatchBatch handles POST /match/batch. Partial failures are reported
// per candidate; candidates whose resumes exist are still scored together.
// The job and every candidate text are embedded in a single provider call.
func (h *MatchHandler) HandleMatchBatch(c *fiber.Ctx) error {
	var req models.MatchBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if len(req.ResumeIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_ids is required",
		})
	}
	if req.Job.Title == "" || len(req.Job.RequiredSkills) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job title and required skills are required",
		})
	}

	responses := make([]models.MatchResponse, len(req.ResumeIDs))

	// Load phase: collect the scorable candidates, record load errors.
	type loaded struct {
		index    int
		resumeID uuid.UUID
		cv       *models.ExtractedCV
		rawText  string
	}
	var candidates []loaded

	for i, idStr := range req.ResumeIDs {
		responses[i] = models.MatchResponse{ResumeID: idStr}

		resumeID, err := uuid.Parse(idStr)
		if err != nil {
			responses[i].Error = "invalid resume_id format"
			continue
		}

		cv, rawText, err := h.loadCandidate(resumeID)
		if err != nil {
			responses[i].Error = err.Error()
			continue
		}

		candidates = append(candidates, loaded{index: i, resumeID: resumeID, cv: cv, rawText: rawText})
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, services.JobCorpus(req.Job))
	for _, cand := range candidates {
		texts = append(texts, cand.rawText)
	}

	vectors, err := h.embeddings.EmbedBatch(c.Context(), texts)
	if err != nil {
		h.logger.Error("batch embedding failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "embedding failed",
		})
	}
	jobEmbedding := vectors[0]
	cvEmbeddings := vectors[1:]

	cvs := make([]*models.ExtractedCV, len(candidates))
	for i, cand := range candidates {
		cvs[i] = cand.cv
	}

	scores, err := h.matcher.MatchBatch(c.Context(), cvs, cvEmbeddings, jobEmbedding, req.Job)
	if err != nil {
		h.logger.Error("batch match failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "batch match scoring failed",
		})
	}

	for i, cand := range candidates {
		responses[cand.index].Match = scores[i]
		h.persist(cand.resumeID, req.Job.Title, scores[i])
	}

	return c.JSON(fiber.Map{"results": responses})
}

func (h *MatchHandler) loadCandidate(resumeID uuid.UUID) (*models.ExtractedCV, string, error) {
	resume, err := h.resumeRepo.FindByID(resumeID)
	if err != nil {
		return nil, "", err
	}

	if resume.ExtractedCV == "" {
		return nil, "", fiber.NewError(fiber.StatusNotFound, "resume has no structured CV")
	}

	var cv models.ExtractedCV
	if err := json.Unmarshal([]byte(resume.ExtractedCV), &cv); err != nil {
		return nil, "", fiber.NewError(fiber.StatusInternalServerError, "stored CV is unreadable")
	}
	return &cv, resume.RawText, nil
}

// persist writes the score snapshot; a storage failure is logged, not
// surfaced, because the caller already has the score.
func (h *MatchHandler) persist(resumeID uuid.UUID, jobTitle string, score *models.MatchScore) {
	evidence, err := json.Marshal(score.Evidence)
	if err != nil {
		h.logger.Error("failed to serialize match evidence", zap.Error(err))
		return
	}

	result := &models.MatchResult{
		ResumeID:    resumeID,
		JobTitle:    jobTitle,
		Score0To100: score.Score0To100,
		BM25Score:   score.BM25Score,
		VectorScore: score.VectorScore,
		LLMScore:    score.LLMScore,
		Evidence:    string(evidence),
		Version:     score.Version,
	}

	if err := h.matchRepo.Create(result); err != nil {
		h.logger.Error("failed to persist match result",
			zap.String("resume_id", resumeID.String()), zap.Error(err))
	}
}
