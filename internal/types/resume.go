// Package types defines the resume and job-description data model shared by
// every pipeline stage. Field names mirror the JSON wire format consumed by
// the renderers and the web client.
package types

// SkillType classifies a skill as technical or soft.
type SkillType string

// Skill type values.
const (
	SkillTechnical SkillType = "technical"
	SkillSoft      SkillType = "soft"
)

// Proficiency is a CEFR language level, or Native.
type Proficiency string

// Language proficiency levels.
const (
	ProficiencyA1     Proficiency = "A1"
	ProficiencyA2     Proficiency = "A2"
	ProficiencyB1     Proficiency = "B1"
	ProficiencyB2     Proficiency = "B2"
	ProficiencyC1     Proficiency = "C1"
	ProficiencyC2     Proficiency = "C2"
	ProficiencyNative Proficiency = "Native"
)

// PersonalInfo holds contact fields. The enhancement pipeline never touches
// this struct; it is copied verbatim into the merged resume.
type PersonalInfo struct {
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	EmailAddress    string `json:"email_address"`
	LinkedIn        string `json:"linkedin,omitempty"`
	PersonalWebsite string `json:"personal_website,omitempty"`
}

// Experience is one professional or volunteer engagement.
// An absent EndDate means the engagement is ongoing.
type Experience struct {
	RoleTitle   string   `json:"role_title"`
	CompanyName string   `json:"company_name"`
	StartDate   Date     `json:"start_date"`
	EndDate     Date     `json:"end_date,omitempty"`
	Description []string `json:"description"`
	IsVolunteer bool     `json:"is_volunteer"`
}

// Education is one degree program.
type Education struct {
	Degree         string `json:"degree"`
	Major          string `json:"major"`
	UniversityName string `json:"university_name"`
	City           string `json:"city"`
	Country        string `json:"country"`
	StartDate      Date   `json:"start_date"`
	EndDate        Date   `json:"end_date,omitempty"`
}

// Skill is a named skill with its classification.
type Skill struct {
	SkillName string    `json:"skill_name"`
	SkillType SkillType `json:"skill_type"`
}

// Certification is a professional certification.
type Certification struct {
	CertificationName   string `json:"certification_name"`
	IssuingOrganization string `json:"issuing_organization"`
	IssueDate           Date   `json:"issue_date,omitempty"`
}

// Language is a spoken language with proficiency.
type Language struct {
	Language         string      `json:"language"`
	ProficiencyLevel Proficiency `json:"proficiency_level"`
}

// Project is a personal or professional project.
type Project struct {
	ProjectName string   `json:"project_name"`
	Description []string `json:"description"`
	ProjectLink string   `json:"project_link,omitempty"`
}

// Resume is the single source of truth for a candidate profile.
type Resume struct {
	PersonalInfo   PersonalInfo    `json:"personal_info"`
	Summary        string          `json:"summary"`
	Educations     []Education     `json:"educations"`
	Experiences    []Experience    `json:"experiences"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
	Projects       []Project       `json:"projects"`
}

// ProfessionalExperiences returns the experiences with IsVolunteer unset,
// preserving order.
func (r Resume) ProfessionalExperiences() []Experience {
	var out []Experience
	for _, exp := range r.Experiences {
		if !exp.IsVolunteer {
			out = append(out, exp)
		}
	}
	return out
}

// VolunteerExperiences returns the experiences with IsVolunteer set,
// preserving order.
func (r Resume) VolunteerExperiences() []Experience {
	var out []Experience
	for _, exp := range r.Experiences {
		if exp.IsVolunteer {
			out = append(out, exp)
		}
	}
	return out
}
