package models

import (
	"time"

	"github.com/google/uuid"
)

// Resume is the extraction artifact for one parsed document: the raw text,
// how it was obtained, and the structured CV from the LLM extractor
// (serialized JSON).
type Resume struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DocumentID      uuid.UUID `gorm:"type:uuid;not null" json:"document_id"`
	RawText         string    `gorm:"type:text" json:"raw_text"`
	ParseMethod     string    `gorm:"type:text" json:"parse_method"`
	ParseConfidence float64   `gorm:"type:decimal(3,2)" json:"parse_confidence"`
	ExtractedLength int       `gorm:"type:integer" json:"extracted_length"`
	ParseNote       *string   `gorm:"type:text" json:"parse_note,omitempty"`
	TraceID         string    `gorm:"type:text" json:"trace_id"`
	ExtractedCV     string    `gorm:"type:jsonb" json:"extracted_cv"`
	Summary         string    `gorm:"type:text" json:"summary,omitempty"`
	CreatedAt       time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`

	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Resume) TableName() string {
	return "resumes"
}
