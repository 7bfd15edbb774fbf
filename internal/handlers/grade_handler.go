package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/services"
)

type GradeHandler struct {
	grader services.Grader
}

func NewGradeHandler(grader services.Grader) *GradeHandler {
	return &GradeHandler{grader: grader}
}

// HandleGrade handles POST /grade. Grading always responds 200 with a
// GradeResult; an ungradable answer scores zero with a manual-review
// rationale rather than an error status.
func (h *GradeHandler) HandleGrade(c *fiber.Ctx) error {
	var req models.GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if req.Question.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question type is required",
		})
	}
	if req.Question.Points <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question points must be positive",
		})
	}

	result := h.grader.Grade(c.Context(), req.Question, req.Answer)

	return c.JSON(result)
}
