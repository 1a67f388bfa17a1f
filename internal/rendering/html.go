// Package rendering produces a printable HTML view of a resume. The
// template lives in code; html/template handles escaping so resume content
// can never inject markup.
package rendering

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

var resumeTemplate = template.Must(template.New("resume").Funcs(template.FuncMap{
	"dateRange": dateRange,
	"yearMonth": yearMonth,
}).Parse(resumeHTML))

// RenderHTML renders the resume as a standalone HTML document.
func RenderHTML(resume types.Resume) ([]byte, error) {
	data := struct {
		types.Resume
		Professional []types.Experience
		Volunteer    []types.Experience
	}{
		Resume:       resume,
		Professional: resume.ProfessionalExperiences(),
		Volunteer:    resume.VolunteerExperiences(),
	}

	var buf bytes.Buffer
	if err := resumeTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render resume: %w", err)
	}
	return buf.Bytes(), nil
}

// dateRange formats "2021-03 - Present" style ranges for experiences and
// educations.
func dateRange(start, end types.Date) string {
	from := yearMonth(start)
	to := "Present"
	if !end.IsZero() {
		to = yearMonth(end)
	}
	if from == "" {
		return to
	}
	return from + " - " + to
}

func yearMonth(d types.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.YearMonth()
}

const resumeHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.PersonalInfo.FullName}}</title>
<style>
body { font-family: Georgia, serif; max-width: 50rem; margin: 2rem auto; color: #1a1a1a; line-height: 1.45; }
h1 { margin-bottom: 0.1rem; }
h2 { border-bottom: 1px solid #999; padding-bottom: 0.15rem; margin-top: 1.6rem; }
.contact { color: #444; font-size: 0.9rem; }
.entry { margin-bottom: 0.9rem; }
.entry-head { display: flex; justify-content: space-between; }
.entry-head .where { font-weight: bold; }
.entry-head .when { color: #555; }
ul { margin: 0.3rem 0 0 1.2rem; }
.tags span { display: inline-block; background: #eee; border-radius: 3px; padding: 0.1rem 0.5rem; margin: 0.12rem; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>{{.PersonalInfo.FullName}}</h1>
<p class="contact">
{{- if .PersonalInfo.EmailAddress}}{{.PersonalInfo.EmailAddress}}{{end}}
{{- if .PersonalInfo.PhoneNumber}} &middot; {{.PersonalInfo.PhoneNumber}}{{end}}
{{- if .PersonalInfo.LinkedIn}} &middot; {{.PersonalInfo.LinkedIn}}{{end}}
{{- if .PersonalInfo.PersonalWebsite}} &middot; {{.PersonalInfo.PersonalWebsite}}{{end}}
</p>

{{if .Summary}}
<h2>Summary</h2>
<p>{{.Summary}}</p>
{{end}}

{{if .Professional}}
<h2>Experience</h2>
{{range .Professional}}
<div class="entry">
  <div class="entry-head">
    <span class="where">{{.RoleTitle}}{{if .CompanyName}}, {{.CompanyName}}{{end}}</span>
    <span class="when">{{dateRange .StartDate .EndDate}}</span>
  </div>
  {{if .Description}}<ul>{{range .Description}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>
{{end}}
{{end}}

{{if .Volunteer}}
<h2>Volunteer Experience</h2>
{{range .Volunteer}}
<div class="entry">
  <div class="entry-head">
    <span class="where">{{.RoleTitle}}{{if .CompanyName}}, {{.CompanyName}}{{end}}</span>
    <span class="when">{{dateRange .StartDate .EndDate}}</span>
  </div>
  {{if .Description}}<ul>{{range .Description}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>
{{end}}
{{end}}

{{if .Educations}}
<h2>Education</h2>
{{range .Educations}}
<div class="entry">
  <div class="entry-head">
    <span class="where">{{.Degree}}{{if .Major}} in {{.Major}}{{end}}, {{.UniversityName}}</span>
    <span class="when">{{dateRange .StartDate .EndDate}}</span>
  </div>
  {{if or .City .Country}}<div>{{.City}}{{if and .City .Country}}, {{end}}{{.Country}}</div>{{end}}
</div>
{{end}}
{{end}}

{{if .Skills}}
<h2>Skills</h2>
<p class="tags">{{range .Skills}}<span>{{.SkillName}}</span>{{end}}</p>
{{end}}

{{if .Certifications}}
<h2>Certifications</h2>
<ul>
{{range .Certifications}}<li>{{.CertificationName}}{{if .IssuingOrganization}}, {{.IssuingOrganization}}{{end}}{{if not .IssueDate.IsZero}} ({{yearMonth .IssueDate}}){{end}}</li>
{{end}}</ul>
{{end}}

{{if .Languages}}
<h2>Languages</h2>
<ul>
{{range .Languages}}<li>{{.Language}}{{if .ProficiencyLevel}} ({{.ProficiencyLevel}}){{end}}</li>
{{end}}</ul>
{{end}}

{{if .Projects}}
<h2>Projects</h2>
{{range .Projects}}
<div class="entry">
  <div class="entry-head">
    <span class="where">{{.ProjectName}}</span>
    {{if .ProjectLink}}<span class="when"><a href="{{.ProjectLink}}">{{.ProjectLink}}</a></span>{{end}}
  </div>
  {{if .Description}}<ul>{{range .Description}}<li>{{.}}</li>{{end}}</ul>{{end}}
</div>
{{end}}
{{end}}
</body>
</html>
`
