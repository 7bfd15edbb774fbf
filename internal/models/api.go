package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Status       string `json:"status"`
}

type ResumeResponse struct {
	ID           string       `json:"id"`
	DocumentID   string       `json:"document_id"`
	Status       string       `json:"status"`
	Method       string       `json:"method,omitempty"`
	Confidence   float64      `json:"confidence"`
	CV           *ExtractedCV `json:"cv,omitempty"`
	Summary      string       `json:"summary,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

type MatchRequest struct {
	ResumeID string          `json:"resume_id" validate:"required,uuid"`
	Job      JobRequirements `json:"job" validate:"required"`
}

type MatchBatchRequest struct {
	ResumeIDs []string        `json:"resume_ids" validate:"required"`
	Job       JobRequirements `json:"job" validate:"required"`
}

type MatchResponse struct {
	ResumeID string      `json:"resume_id"`
	Match    *MatchScore `json:"match,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type GradeRequest struct {
	Question AssessmentQuestion `json:"question" validate:"required"`
	Answer   AssessmentAnswer   `json:"answer" validate:"required"`
}

type CandidateSearchRequest struct {
	Job   JobRequirements `json:"job" validate:"required"`
	Limit int             `json:"limit,omitempty"`
}

type CandidateSearchHit struct {
	ResumeID string  `json:"resume_id"`
	Score    float32 `json:"score"`
	Snippet  string  `json:"snippet"`
}
