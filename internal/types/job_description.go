package types

// Seniority is the seniority level stated or implied by a job posting.
type Seniority string

// Seniority values.
const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
	SeniorityLead   Seniority = "lead"
)

// ValidSeniority reports whether s is one of the known levels.
func ValidSeniority(s Seniority) bool {
	switch s {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead:
		return true
	}
	return false
}

// JobDescription is the structured form of a job posting.
type JobDescription struct {
	JobTitle         string    `json:"job_title"`
	CompanyName      string    `json:"company_name,omitempty"`
	Responsibilities []string  `json:"responsibilities"`
	Requirements     []string  `json:"requirements"`
	RequiredSkills   []string  `json:"required_skills"`
	PreferredSkills  []string  `json:"preferred_skills"`
	SeniorityLevel   Seniority `json:"seniority_level"`
	SoftSkills       []string  `json:"soft_skills"`
}
