package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/repositories"
)

type ResumeHandler struct {
	docRepo    repositories.DocumentRepository
	resumeRepo repositories.ResumeRepository
}

func NewResumeHandler(
	docRepo repositories.DocumentRepository,
	resumeRepo repositories.ResumeRepository,
) *ResumeHandler {
	return &ResumeHandler{
		docRepo:    docRepo,
		resumeRepo: resumeRepo,
	}
}

// HandleGetResume handles GET /cv/:id. The id is the document id from the
// upload response; the resume appears once processing completes.
func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid document ID format",
		})
	}

	doc, err := h.docRepo.FindByID(docID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "document not found",
		})
	}

	response := models.ResumeResponse{
		DocumentID: doc.ID.String(),
		Status:     string(doc.Status),
	}

	if doc.Status == models.StatusFailed {
		response.ErrorMessage = doc.ErrorMessage
		return c.JSON(response)
	}

	if doc.Status != models.StatusCompleted {
		return c.JSON(response)
	}

	resume, err := h.resumeRepo.FindByDocumentID(docID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "resume not found",
		})
	}

	response.ID = resume.ID.String()
	response.Method = resume.ParseMethod
	response.Confidence = resume.ParseConfidence
	response.Summary = resume.Summary

	if resume.ExtractedCV != "" {
		var cv models.ExtractedCV
		if err := json.Unmarshal([]byte(resume.ExtractedCV), &cv); err == nil {
			if c.QueryBool("anonymized") {
				anonymized := cv.Anonymize()
				response.CV = &anonymized
			} else {
				response.CV = &cv
			}
		}
	}

	return c.JSON(response)
}
