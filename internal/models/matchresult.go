package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult is the persisted snapshot of one resume scored against one job.
// A rescore inserts a new row; existing rows are never updated.
type MatchResult struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeID    uuid.UUID `gorm:"type:uuid;not null" json:"resume_id"`
	JobTitle    string    `gorm:"type:text" json:"job_title"`
	Score0To100 int       `gorm:"type:integer" json:"score_0_to_100"`
	BM25Score   float64   `gorm:"type:decimal(4,3)" json:"bm25_score"`
	VectorScore float64   `gorm:"type:decimal(4,3)" json:"vector_score"`
	LLMScore    float64   `gorm:"type:decimal(4,3)" json:"llm_score"`
	Evidence    string    `gorm:"type:jsonb" json:"evidence"`
	Version     string    `gorm:"type:text" json:"version"`
	CreatedAt   time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`

	Resume Resume `gorm:"foreignKey:ResumeID" json:"-"`
}

func (MatchResult) TableName() string {
	return "match_results"
}
