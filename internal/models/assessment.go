package models

// QuestionType covers the assessment builder's question kinds.
type QuestionType string

const (
	QuestionMCQ         QuestionType = "MCQ"
	QuestionMultiSelect QuestionType = "MULTI_SELECT"
	QuestionShortText   QuestionType = "SHORT_TEXT"
	QuestionLongText    QuestionType = "LONG_TEXT"
	QuestionCode        QuestionType = "CODE"
)

type AssessmentQuestion struct {
	Type           QuestionType `json:"type"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Choices        []string     `json:"choices,omitempty"`
	CorrectIndexes []int        `json:"correctIndexes,omitempty"`
	Language       string       `json:"language,omitempty"`
	TestCases      []TestCase   `json:"testCases,omitempty"`
	Points         float64      `json:"points"`
	Rubric         string       `json:"rubric,omitempty"`
}

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// AssessmentAnswer holds either selected choice indexes or free text,
// depending on the question type.
type AssessmentAnswer struct {
	SelectedIndexes []int  `json:"selectedIndexes,omitempty"`
	Text            string `json:"text,omitempty"`
}

// GradeResult is always produced, even when automatic grading fails; in that
// case Score is zero and Rationale explains that manual review is required.
type GradeResult struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}
