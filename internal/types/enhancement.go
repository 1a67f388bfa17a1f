package types

// ChangeReason pairs a field path with the model's rationale for changing it.
// Collected across sections to build the change report.
type ChangeReason struct {
	FieldOrLocation string `json:"field_or_location"`
	Reason          string `json:"reason"`
}

// SummaryEnhancement is the rewritten summary section plus reasons.
type SummaryEnhancement struct {
	Enhanced string         `json:"enhanced"`
	Reasons  []ChangeReason `json:"reasons"`
}

// ExperiencesEnhancement is the rewritten experiences list plus reasons.
type ExperiencesEnhancement struct {
	Enhanced []Experience   `json:"enhanced"`
	Reasons  []ChangeReason `json:"reasons"`
}

// EducationsEnhancement is the rewritten educations list plus reasons.
type EducationsEnhancement struct {
	Enhanced []Education    `json:"enhanced"`
	Reasons  []ChangeReason `json:"reasons"`
}

// SkillsEnhancement is the rewritten skills list plus reasons.
type SkillsEnhancement struct {
	Enhanced []Skill        `json:"enhanced"`
	Reasons  []ChangeReason `json:"reasons"`
}

// CertificationsEnhancement is the rewritten certifications list plus reasons.
type CertificationsEnhancement struct {
	Enhanced []Certification `json:"enhanced"`
	Reasons  []ChangeReason  `json:"reasons"`
}

// LanguagesEnhancement is the rewritten languages list plus reasons.
type LanguagesEnhancement struct {
	Enhanced []Language     `json:"enhanced"`
	Reasons  []ChangeReason `json:"reasons"`
}

// ProjectsEnhancement is the rewritten projects list plus reasons.
type ProjectsEnhancement struct {
	Enhanced []Project      `json:"enhanced"`
	Reasons  []ChangeReason `json:"reasons"`
}

// FullEnhancementOutput aggregates per-section enhancement results. A nil
// section means it was not processed or failed; the merge stage substitutes
// the original section in that case.
type FullEnhancementOutput struct {
	Summary        *SummaryEnhancement        `json:"summary,omitempty"`
	Experiences    *ExperiencesEnhancement    `json:"experiences,omitempty"`
	Educations     *EducationsEnhancement     `json:"educations,omitempty"`
	Skills         *SkillsEnhancement         `json:"skills,omitempty"`
	Certifications *CertificationsEnhancement `json:"certifications,omitempty"`
	Languages      *LanguagesEnhancement      `json:"languages,omitempty"`
	Projects       *ProjectsEnhancement       `json:"projects,omitempty"`
}

// IsEmpty reports whether no section was populated.
func (f FullEnhancementOutput) IsEmpty() bool {
	return f.Summary == nil && f.Experiences == nil && f.Educations == nil &&
		f.Skills == nil && f.Certifications == nil && f.Languages == nil &&
		f.Projects == nil
}

// AllReasons returns every ChangeReason from every populated section, in
// fixed section order: summary, experiences, educations, skills,
// certifications, languages, projects.
func (f FullEnhancementOutput) AllReasons() []ChangeReason {
	var reasons []ChangeReason
	if f.Summary != nil {
		reasons = append(reasons, f.Summary.Reasons...)
	}
	if f.Experiences != nil {
		reasons = append(reasons, f.Experiences.Reasons...)
	}
	if f.Educations != nil {
		reasons = append(reasons, f.Educations.Reasons...)
	}
	if f.Skills != nil {
		reasons = append(reasons, f.Skills.Reasons...)
	}
	if f.Certifications != nil {
		reasons = append(reasons, f.Certifications.Reasons...)
	}
	if f.Languages != nil {
		reasons = append(reasons, f.Languages.Reasons...)
	}
	if f.Projects != nil {
		reasons = append(reasons, f.Projects.Reasons...)
	}
	return reasons
}
