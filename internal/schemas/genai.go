package schemas

import "github.com/google/generative-ai-go/genai"

// Response schemas handed to the provider so structured calls are forced into
// the expected shape at generation time. The embedded JSON Schemas remain the
// authoritative check; these mirror them in the provider's dialect.

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strArray() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func array(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

func reasonsSchema() *genai.Schema {
	return array(object(map[string]*genai.Schema{
		"field_or_location": str("Section or field that was changed"),
		"reason":            str("Explanation for the change"),
	}, "field_or_location", "reason"))
}

func experienceSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"role_title":   str(""),
		"company_name": str(""),
		"start_date":   str("ISO date YYYY-MM-DD or YYYY-MM"),
		"end_date":     {Type: genai.TypeString, Nullable: true, Description: "ISO date; null when ongoing"},
		"description":  strArray(),
		"is_volunteer": {Type: genai.TypeBoolean},
	}, "role_title", "company_name", "start_date", "description")
}

func educationSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"degree":          str(""),
		"major":           str(""),
		"university_name": str(""),
		"city":            str(""),
		"country":         str(""),
		"start_date":      str("ISO date YYYY-MM-DD or YYYY-MM"),
		"end_date":        {Type: genai.TypeString, Nullable: true, Description: "ISO date; null when ongoing"},
	}, "degree", "major", "university_name", "start_date")
}

func skillSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"skill_name": str(""),
		"skill_type": {Type: genai.TypeString, Enum: []string{"technical", "soft"}},
	}, "skill_name", "skill_type")
}

func certificationSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"certification_name":   str(""),
		"issuing_organization": str(""),
		"issue_date":           {Type: genai.TypeString, Nullable: true},
	}, "certification_name", "issuing_organization")
}

func languageSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"language":          str(""),
		"proficiency_level": {Type: genai.TypeString, Enum: []string{"A1", "A2", "B1", "B2", "C1", "C2", "Native"}},
	}, "language", "proficiency_level")
}

func projectSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"project_name": str("Project title, never a URL"),
		"description":  strArray(),
		"project_link": {Type: genai.TypeString, Nullable: true, Description: "URL to the project"},
	}, "project_name", "description")
}

// MappingResultSchema is the provider response schema for the mapping stage.
func MappingResultSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"matched_skills":       strArray(),
		"matched_requirements": strArray(),
		"gaps":                 strArray(),
		"match_score":          {Type: genai.TypeInteger, Description: "Alignment score from 1 to 10"},
	}, "match_score")
}

// JobDescriptionSchema is the provider response schema for job parsing.
func JobDescriptionSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"job_title":        str(""),
		"company_name":     {Type: genai.TypeString, Nullable: true},
		"responsibilities": strArray(),
		"requirements":     strArray(),
		"required_skills":  strArray(),
		"preferred_skills": strArray(),
		"seniority_level":  {Type: genai.TypeString, Enum: []string{"junior", "mid", "senior", "lead"}},
		"soft_skills":      strArray(),
	}, "job_title")
}

// ResumeSchema is the provider response schema for resume parsing.
func ResumeSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"personal_info": object(map[string]*genai.Schema{
			"full_name":        str(""),
			"phone_number":     str(""),
			"email_address":    str(""),
			"linkedin":         {Type: genai.TypeString, Nullable: true},
			"personal_website": {Type: genai.TypeString, Nullable: true},
		}, "full_name", "email_address"),
		"summary":        str(""),
		"educations":     array(educationSchema()),
		"experiences":    array(experienceSchema()),
		"skills":         array(skillSchema()),
		"certifications": array(certificationSchema()),
		"languages":      array(languageSchema()),
		"projects":       array(projectSchema()),
	}, "personal_info", "summary")
}

func sectionSchema(enhanced *genai.Schema) *genai.Schema {
	return object(map[string]*genai.Schema{
		"enhanced": enhanced,
		"reasons":  reasonsSchema(),
	}, "enhanced")
}

// SummarySectionSchema is the response schema for the summary section.
func SummarySectionSchema() *genai.Schema {
	return sectionSchema(str("Enhanced summary text"))
}

// ExperiencesSectionSchema is the response schema for the experiences section.
func ExperiencesSectionSchema() *genai.Schema {
	return sectionSchema(array(experienceSchema()))
}

// EducationsSectionSchema is the response schema for the educations section.
func EducationsSectionSchema() *genai.Schema {
	return sectionSchema(array(educationSchema()))
}

// SkillsSectionSchema is the response schema for the skills section.
func SkillsSectionSchema() *genai.Schema {
	return sectionSchema(array(skillSchema()))
}

// CertificationsSectionSchema is the response schema for the certifications section.
func CertificationsSectionSchema() *genai.Schema {
	return sectionSchema(array(certificationSchema()))
}

// LanguagesSectionSchema is the response schema for the languages section.
func LanguagesSectionSchema() *genai.Schema {
	return sectionSchema(array(languageSchema()))
}

// ProjectsSectionSchema is the response schema for the projects section.
func ProjectsSectionSchema() *genai.Schema {
	return sectionSchema(array(projectSchema()))
}

// FullEnhancementSchema is the response schema for single-call mode: every
// section's output object in one payload.
func FullEnhancementSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"summary":        SummarySectionSchema(),
		"experiences":    ExperiencesSectionSchema(),
		"educations":     EducationsSectionSchema(),
		"skills":         SkillsSectionSchema(),
		"certifications": CertificationsSectionSchema(),
		"languages":      LanguagesSectionSchema(),
		"projects":       ProjectsSectionSchema(),
	})
}
