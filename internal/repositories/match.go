package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

type MatchRepository interface {
	Create(result *models.MatchResult) error
	FindByResumeID(resumeID uuid.UUID, limit int) ([]models.MatchResult, error)
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(result *models.MatchResult) error {
	if err := r.db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to create match result: %w", err)
	}
	return nil
}

func (r *matchRepository) FindByResumeID(resumeID uuid.UUID, limit int) ([]models.MatchResult, error) {
	var results []models.MatchResult
	err := r.db.
		Where("resume_id = ?", resumeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find match results: %w", err)
	}

	return results, nil
}
