package models

// ExtractedCV is the canonical structured resume produced by the LLM
// extractor. A correction produces a new record; values are never mutated in
// place once stored.
type ExtractedCV struct {
	Personal       *PersonalInfo   `json:"personal,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Experiences    []Experience    `json:"experiences"`
	Education      []Education     `json:"education"`
	Skills         []string        `json:"skills"`
	Languages      []Language      `json:"languages,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
}

type PersonalInfo struct {
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	LinkedIn  string `json:"linkedIn,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Experience entries keep source ordering. Dates are YYYY-MM, "present" for
// ongoing roles, or empty when the CV does not state them.
type Experience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current,omitempty"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	Skills       []string `json:"skills,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	GPA         string `json:"gpa,omitempty"`
	Description string `json:"description,omitempty"`
}

type LanguageLevel string

const (
	LanguageBasic          LanguageLevel = "BASIC"
	LanguageConversational LanguageLevel = "CONVERSATIONAL"
	LanguageFluent         LanguageLevel = "FLUENT"
	LanguageNative         LanguageLevel = "NATIVE"
)

func (l LanguageLevel) Valid() bool {
	switch l {
	case LanguageBasic, LanguageConversational, LanguageFluent, LanguageNative:
		return true
	}
	return false
}

type Language struct {
	Name  string        `json:"name"`
	Level LanguageLevel `json:"level"`
}

type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer,omitempty"`
	Date         string `json:"date,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	URL          string `json:"url,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
}

// Anonymize returns a copy with direct PII redacted. Location, employers and
// institutions stay, they are needed for matching.
func (cv ExtractedCV) Anonymize() ExtractedCV {
	out := cv
	if cv.Personal != nil {
		out.Personal = &PersonalInfo{
			FullName: "REDACTED",
			Email:    "REDACTED",
			Phone:    "REDACTED",
			Location: cv.Personal.Location,
		}
	}
	return out
}
