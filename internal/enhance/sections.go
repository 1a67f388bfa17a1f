package enhance

import (
	"encoding/json"

	"github.com/google/generative-ai-go/genai"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/schemas"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Section names one of the seven enhanceable resume sections.
type Section string

const (
	SectionSummary        Section = "summary"
	SectionExperiences    Section = "experiences"
	SectionEducations     Section = "educations"
	SectionSkills         Section = "skills"
	SectionCertifications Section = "certifications"
	SectionLanguages      Section = "languages"
	SectionProjects       Section = "projects"
)

// Sections is the canonical processing order. Event indices, progress
// percentages, and sequential execution all derive from this slice.
var Sections = []Section{
	SectionSummary,
	SectionExperiences,
	SectionEducations,
	SectionSkills,
	SectionCertifications,
	SectionLanguages,
	SectionProjects,
}

// sectionSpec binds a section to its validation schema, its structured
// response schema, and a decoder that stores the parsed result into the
// aggregate output.
type sectionSpec struct {
	name       Section
	schemaFile string
	respSchema func() *genai.Schema
	decode     func(raw []byte, out *types.FullEnhancementOutput) error
}

var sectionSpecs = map[Section]sectionSpec{
	SectionSummary: {
		name:       SectionSummary,
		schemaFile: "section_summary.json",
		respSchema: schemas.SummarySectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.SummaryEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Summary = &section
			return nil
		},
	},
	SectionExperiences: {
		name:       SectionExperiences,
		schemaFile: "section_experiences.json",
		respSchema: schemas.ExperiencesSectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.ExperiencesEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Experiences = &section
			return nil
		},
	},
	SectionEducations: {
		name:       SectionEducations,
		schemaFile: "section_educations.json",
		respSchema: schemas.EducationsSectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.EducationsEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Educations = &section
			return nil
		},
	},
	SectionSkills: {
		name:       SectionSkills,
		schemaFile: "section_skills.json",
		respSchema: schemas.SkillsSectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.SkillsEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Skills = &section
			return nil
		},
	},
	SectionCertifications: {
		name:       SectionCertifications,
		schemaFile: "section_certifications.json",
		respSchema: schemas.CertificationsSectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.CertificationsEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Certifications = &section
			return nil
		},
	},
	SectionLanguages: {
		name:       SectionLanguages,
		schemaFile: "section_languages.json",
		respSchema: schemas.LanguagesSectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.LanguagesEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Languages = &section
			return nil
		},
	},
	SectionProjects: {
		name:       SectionProjects,
		schemaFile: "section_projects.json",
		respSchema: schemas.ProjectsSectionSchema,
		decode: func(raw []byte, out *types.FullEnhancementOutput) error {
			var section types.ProjectsEnhancement
			if err := json.Unmarshal(raw, &section); err != nil {
				return err
			}
			out.Projects = &section
			return nil
		},
	},
}
