package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/services"
)

const defaultSearchLimit = 20

// SearchHandler shortlists indexed candidates by semantic similarity to a
// job posting. This is a recall tool; rank the shortlist with /match.
type SearchHandler struct {
	embeddings services.EmbeddingProvider
	qdrant     services.QdrantService
	logger     *zap.Logger
}

func NewSearchHandler(
	embeddings services.EmbeddingProvider,
	qdrant services.QdrantService,
	logger *zap.Logger,
) *SearchHandler {
	return &SearchHandler{
		embeddings: embeddings,
		qdrant:     qdrant,
		logger:     logger,
	}
}

// HandleSearch handles POST /candidates/search
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	var req models.CandidateSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if req.Job.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job title is required",
		})
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	queryText := req.Job.Title + " " + req.Job.Description + " " + strings.Join(req.Job.RequiredSkills, " ")

	queryVector, err := h.embeddings.Embed(c.Context(), queryText)
	if err != nil {
		h.logger.Error("failed to embed search query", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to embed search query",
		})
	}

	// Over-fetch: several chunks of the same resume can rank high, and the
	// response deduplicates to one hit per resume.
	results, err := h.qdrant.SearchSimilar(c.Context(), queryVector, limit*3)
	if err != nil {
		h.logger.Error("candidate search failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "candidate search failed",
		})
	}

	seen := make(map[string]bool)
	hits := make([]models.CandidateSearchHit, 0, limit)
	for _, result := range results {
		if result.ResumeID == "" || seen[result.ResumeID] {
			continue
		}
		seen[result.ResumeID] = true

		hits = append(hits, models.CandidateSearchHit{
			ResumeID: result.ResumeID,
			Score:    result.Score,
			Snippet:  snippet(result.Text, 200),
		})
		if len(hits) >= limit {
			break
		}
	}

	return c.JSON(fiber.Map{"hits": hits})
}

func snippet(text string, max int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
