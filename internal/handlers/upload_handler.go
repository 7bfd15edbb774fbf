package handlers

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
	"github.com/JanciNeviemProste/jobsphere/internal/repositories"
	"github.com/JanciNeviemProste/jobsphere/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	securityGate   *services.SecurityGate
	worker         services.Worker
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	securityGate *services.SecurityGate,
	worker services.Worker,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		securityGate:   securityGate,
		worker:         worker,
	}
}

// HandleUpload handles POST /cv. The file must clear the security gate
// before anything is written to disk or the database.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("cv")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing 'cv' file in multipart form",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer src.Close()

	buf, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	meta := models.DocumentMeta{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		FileSize: int64(len(buf)),
		Locale:   c.FormValue("locale", "en"),
	}

	if err := h.securityGate.Check(c.Context(), buf, meta); err != nil {
		var perr *services.ParseError
		if errors.As(err, &perr) {
			status := fiber.StatusUnprocessableEntity
			if perr.Code == services.CodeFileTooLarge {
				status = fiber.StatusRequestEntityTooLarge
			}
			return c.Status(status).JSON(fiber.Map{
				"error": perr.Message,
				"code":  perr.Code,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "security check failed",
		})
	}

	filename, filePath, err := h.storageService.SaveFile(buf, fileHeader.Filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save file: %v", err),
		})
	}

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: fileHeader.Filename,
		MimeType:         meta.MimeType,
		FileSize:         meta.FileSize,
		Locale:           meta.Locale,
		FilePath:         filePath,
		Status:           models.StatusQueued,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.docRepo.Create(&doc); err != nil {
		// Cleanup uploaded file if database insert fails
		h.storageService.DeleteFile(filename)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save document record",
		})
	}

	h.worker.EnqueueJob(doc.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.UploadResponse{
		ID:           doc.ID.String(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		Status:       string(doc.Status),
	})
}
