package models

// JobRequirements is supplied by the caller from the job posting record and
// read-only to the matching subsystem.
type JobRequirements struct {
	Title                    string   `json:"title"`
	Description              string   `json:"description"`
	RequiredSkills           []string `json:"requiredSkills"`
	NiceToHaveSkills         []string `json:"niceToHaveSkills,omitempty"`
	MinimumYearsOfExperience *int     `json:"minimumYearsOfExperience,omitempty"`
	RequiredEducationLevel   string   `json:"requiredEducationLevel,omitempty"`
	Location                 string   `json:"location,omitempty"`
	SalaryMin                *int     `json:"salaryMin,omitempty"`
	SalaryMax                *int     `json:"salaryMax,omitempty"`
}

// MatchScore is a point-in-time snapshot: recreated, never updated, when the
// candidate, the job, or the scoring algorithm version changes.
type MatchScore struct {
	Score0To100 int           `json:"score0to100"`
	BM25Score   float64       `json:"bm25Score"`
	VectorScore float64       `json:"vectorScore"`
	LLMScore    float64       `json:"llmScore"`
	Evidence    MatchEvidence `json:"evidence"`
	Version     string        `json:"version"`
}

type MatchEvidence struct {
	MatchingSkills     []string `json:"matchingSkills"`
	MissingSkills      []string `json:"missingSkills"`
	RelevantExperience []string `json:"relevantExperience"`
	EducationMatch     bool     `json:"educationMatch"`
	LocationMatch      bool     `json:"locationMatch"`
	SalaryMatch        bool     `json:"salaryMatch"`
	YearsOfExperience  int      `json:"yearsOfExperience"`
	Reasoning          string   `json:"reasoning"`
}
