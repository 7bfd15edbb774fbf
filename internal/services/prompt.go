package services

import (
	"fmt"
	"strings"

	"github.com/JanciNeviemProste/jobsphere/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCVExtractionPrompt creates prompt for structured CV extraction
func (pb *PromptBuilder) BuildCVExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`You are an expert CV parser. Extract structured data from the following CV text.

CV TEXT:
%s

Return your response as a single JSON object with EXACTLY this structure:
{
  "personal": {"fullName": "...", "email": "...", "phone": "...", "location": "...", "linkedIn": "...", "github": "..."} or null,
  "summary": "<professional summary>" or null,
  "experiences": [{"title": "...", "company": "...", "location": "...", "startDate": "YYYY-MM", "endDate": "YYYY-MM" or "present", "current": <bool>, "description": "...", "skills": ["..."]}],
  "education": [{"degree": "...", "institution": "...", "startDate": "YYYY-MM", "endDate": "YYYY-MM"}],
  "skills": ["skill1", "skill2"],
  "languages": [{"name": "...", "level": "BASIC" | "CONVERSATIONAL" | "FLUENT" | "NATIVE"}],
  "certifications": [{"name": "...", "issuer": "...", "date": "YYYY-MM"}],
  "projects": [{"name": "...", "description": "...", "technologies": ["..."], "url": "..."}]
}

Rules:
- Use null for missing scalar fields and empty arrays for missing sections. NEVER invent data.
- All dates must be formatted as YYYY-MM. Use "present" for ongoing positions.
- Skills must be individual technology or competency names, not sentences.
- Return ONLY the JSON object, no markdown fences, no commentary.`, cvText)
}

// BuildCVSummaryPrompt creates prompt for the recruiter-facing CV summary
func (pb *PromptBuilder) BuildCVSummaryPrompt(cvText string) string {
	return fmt.Sprintf(`You are an expert recruiter. Summarize the following CV for a hiring manager.

CV TEXT:
%s

Write 3-5 concise bullet points covering the candidate's seniority, core skills and most notable experience. Each bullet starts with "- ".

Return ONLY the bullet points, no headings, no commentary.`, cvText)
}

// BuildMatchJudgePrompt creates prompt for the LLM leg of the hybrid match score
func (pb *PromptBuilder) BuildMatchJudgePrompt(cvSummary string, job models.JobRequirements) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", job.Title))
	if job.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", job.Description))
	}
	if len(job.RequiredSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Required skills: %s\n", strings.Join(job.RequiredSkills, ", ")))
	}
	if len(job.NiceToHaveSkills) > 0 {
		sb.WriteString(fmt.Sprintf("Nice to have: %s\n", strings.Join(job.NiceToHaveSkills, ", ")))
	}
	if job.MinimumYearsOfExperience != nil {
		sb.WriteString(fmt.Sprintf("Minimum years of experience: %d\n", *job.MinimumYearsOfExperience))
	}
	if job.RequiredEducationLevel != "" {
		sb.WriteString(fmt.Sprintf("Required education: %s\n", job.RequiredEducationLevel))
	}
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	}

	return fmt.Sprintf(`You are an expert technical recruiter judging how well a candidate fits a job.

JOB:
%s
CANDIDATE (condensed):
%s

Assess overall fit considering skill overlap, depth of relevant experience, seniority and trajectory.

Return your response in the following JSON format:
{
  "score": <0-100 integer>,
  "reasoning": "<2-3 sentences explaining the score>"
}

Return ONLY the JSON object. Be objective; cite concrete evidence from the candidate data.`,
		sb.String(), cvSummary)
}

// BuildTextGradingPrompt creates prompt for grading free-text assessment answers
func (pb *PromptBuilder) BuildTextGradingPrompt(q models.AssessmentQuestion, answer string) string {
	rubric := q.Rubric
	if rubric == "" {
		rubric = "Grade on correctness, completeness and clarity."
	}

	return fmt.Sprintf(`You are an expert assessor grading a candidate's written answer.

QUESTION:
%s

%s

GRADING RUBRIC:
%s

MAXIMUM POINTS: %.1f

CANDIDATE ANSWER:
%s

Return your response in the following JSON format:
{
  "score": <0 to %.1f, fractional allowed>,
  "rationale": "<2-3 sentences justifying the score>"
}

Return ONLY the JSON object. An empty or off-topic answer scores 0.`,
		q.Title, q.Description, rubric, q.Points, answer, q.Points)
}

// BuildCodeGradingPrompt creates prompt for grading code answers
func (pb *PromptBuilder) BuildCodeGradingPrompt(q models.AssessmentQuestion, answer string) string {
	var tests string
	if len(q.TestCases) > 0 {
		var parts []string
		for i, tc := range q.TestCases {
			parts = append(parts, fmt.Sprintf("%d. input: %s, expected output: %s", i+1, tc.Input, tc.ExpectedOutput))
		}
		tests = "TEST CASES:\n" + strings.Join(parts, "\n") + "\n"
	}

	lang := q.Language
	if lang == "" {
		lang = "unspecified"
	}

	return fmt.Sprintf(`You are an expert code reviewer grading a candidate's coding answer. Reason about the code statically; do not assume you can execute it.

QUESTION:
%s

%s

LANGUAGE: %s
%s
MAXIMUM POINTS: %.1f

CANDIDATE CODE:
%s

Judge correctness against the test cases, algorithmic soundness and code quality.

Return your response in the following JSON format:
{
  "score": <0 to %.1f, fractional allowed>,
  "rationale": "<2-3 sentences justifying the score>"
}

Return ONLY the JSON object.`,
		q.Title, q.Description, lang, tests, q.Points, answer, q.Points)
}
