package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

type DocumentRepository interface {
	Create(doc *models.Document) error
	FindByID(id uuid.UUID) (*models.Document, error)
	UpdateStatus(id uuid.UUID, status models.DocumentStatus) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *models.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) FindByID(id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("document not found")
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository) UpdateStatus(id uuid.UUID, status models.DocumentStatus) error {
	result := r.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}

func (r *documentRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("document not found")
	}

	return nil
}

func (r *documentRepository) FindPendingJobs(limit int) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&docs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending documents: %w", err)
	}

	return docs, nil
}
