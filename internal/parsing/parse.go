package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/prompts"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/schemas"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// ParseResume structures free resume text into a Resume via one structured
// model call. The result is schema-validated and normalized before return.
func ParseResume(ctx context.Context, client llm.Client, text string, log *zap.Logger) (*types.Resume, llm.Usage, error) {
	system := prompts.MustGet("parsing.json", "parse-resume-system")
	user := prompts.Format(prompts.MustGet("parsing.json", "parse-resume-user"), map[string]string{
		"Text": text,
	})

	resp, err := client.GenerateStructured(ctx, schemas.ResumeSchema(), system, user, llm.TierStandard)
	if err != nil {
		return nil, resp.Usage, &ParseError{Target: "resume", Cause: err}
	}

	if err := schemas.Validate("resume.json", resp.Text); err != nil {
		return nil, resp.Usage, &ParseError{Target: "resume", Cause: err}
	}

	var resume types.Resume
	if err := json.Unmarshal([]byte(resp.Text), &resume); err != nil {
		return nil, resp.Usage, &ParseError{Target: "resume", Cause: err}
	}

	normalizeResume(&resume)
	log.Info("resume parsed",
		zap.Int("experiences", len(resume.Experiences)),
		zap.Int("educations", len(resume.Educations)),
		zap.Int("skills", len(resume.Skills)))
	return &resume, resp.Usage, nil
}

// ParseJobDescription structures free job posting text into a
// JobDescription.
func ParseJobDescription(ctx context.Context, client llm.Client, text string, log *zap.Logger) (*types.JobDescription, llm.Usage, error) {
	system := prompts.MustGet("parsing.json", "parse-job-system")
	user := prompts.Format(prompts.MustGet("parsing.json", "parse-job-user"), map[string]string{
		"Text": text,
	})

	resp, err := client.GenerateStructured(ctx, schemas.JobDescriptionSchema(), system, user, llm.TierStandard)
	if err != nil {
		return nil, resp.Usage, &ParseError{Target: "job description", Cause: err}
	}

	if err := schemas.Validate("job_description.json", resp.Text); err != nil {
		return nil, resp.Usage, &ParseError{Target: "job description", Cause: err}
	}

	var jd types.JobDescription
	if err := json.Unmarshal([]byte(resp.Text), &jd); err != nil {
		return nil, resp.Usage, &ParseError{Target: "job description", Cause: err}
	}

	normalizeJobDescription(&jd)
	log.Info("job description parsed",
		zap.String("job_title", jd.JobTitle),
		zap.Int("requirements", len(jd.Requirements)),
		zap.Int("required_skills", len(jd.RequiredSkills)))
	return &jd, resp.Usage, nil
}

// normalizeResume trims fields and drops empty list entries so downstream
// stages never see padding the model invented.
func normalizeResume(r *types.Resume) {
	r.Summary = strings.TrimSpace(r.Summary)
	for i := range r.Experiences {
		exp := &r.Experiences[i]
		exp.RoleTitle = strings.TrimSpace(exp.RoleTitle)
		exp.CompanyName = strings.TrimSpace(exp.CompanyName)
		exp.Description = cleanList(exp.Description)
	}
	for i := range r.Educations {
		edu := &r.Educations[i]
		edu.Degree = strings.TrimSpace(edu.Degree)
		edu.UniversityName = strings.TrimSpace(edu.UniversityName)
	}
	r.Skills = cleanSkills(r.Skills)
	r.Certifications = cleanCertifications(r.Certifications)
	r.Languages = cleanLanguages(r.Languages)
	for i := range r.Projects {
		p := &r.Projects[i]
		p.ProjectName = strings.TrimSpace(p.ProjectName)
		p.Description = cleanList(p.Description)
		p.ProjectLink = strings.TrimSpace(p.ProjectLink)
	}
}

func normalizeJobDescription(jd *types.JobDescription) {
	jd.JobTitle = strings.TrimSpace(jd.JobTitle)
	jd.CompanyName = strings.TrimSpace(jd.CompanyName)
	jd.Responsibilities = cleanList(jd.Responsibilities)
	jd.Requirements = cleanList(jd.Requirements)
	jd.RequiredSkills = cleanList(jd.RequiredSkills)
	jd.PreferredSkills = cleanList(jd.PreferredSkills)
	jd.SoftSkills = cleanList(jd.SoftSkills)
	if !types.ValidSeniority(jd.SeniorityLevel) {
		jd.SeniorityLevel = types.SeniorityMid
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanSkills(in []types.Skill) []types.Skill {
	out := make([]types.Skill, 0, len(in))
	for _, s := range in {
		s.SkillName = strings.TrimSpace(s.SkillName)
		if s.SkillName != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanCertifications(in []types.Certification) []types.Certification {
	out := make([]types.Certification, 0, len(in))
	for _, c := range in {
		c.CertificationName = strings.TrimSpace(c.CertificationName)
		if c.CertificationName != "" {
			out = append(out, c)
		}
	}
	return out
}

func cleanLanguages(in []types.Language) []types.Language {
	out := make([]types.Language, 0, len(in))
	for _, l := range in {
		l.Language = strings.TrimSpace(l.Language)
		if l.Language != "" {
			out = append(out, l)
		}
	}
	return out
}
