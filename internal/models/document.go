package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusQueued     DocumentStatus = "queued"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the stored record of an uploaded CV file. The binary itself
// lives on disk under the upload path; only extraction artifacts persist
// after the pipeline runs.
type Document struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string         `gorm:"type:text" json:"filename"`
	OriginalFileName string         `gorm:"type:text" json:"original_filename"`
	MimeType         string         `gorm:"type:text" json:"mime_type"`
	FileSize         int64          `gorm:"type:bigint" json:"file_size"`
	Locale           string         `gorm:"type:text" json:"locale"`
	FilePath         string         `gorm:"type:text" json:"file_path"`
	Status           DocumentStatus `gorm:"not null;default:'queued'" json:"status"`
	ErrorMessage     *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
