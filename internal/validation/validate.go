// Package validation enforces protected-field rules on enhanced sections.
// The model may rewrite descriptive text but never factual anchors: dates,
// employer and role names, university and degree names, project names and
// links. Violations are corrected in place by reverting the field to its
// original value, and each correction is reported.
package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Violation records one reverted field. Index is the position within the
// section slice; comparison is positional, so entries past the shorter of
// the two slices are never checked.
type Violation struct {
	Section string `json:"section"`
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Got     string `json:"got"`
	Want    string `json:"want"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s[%d].%s: %q reverted to %q", v.Section, v.Index, v.Field, v.Got, v.Want)
}

// Experiences reverts any changed start date, end date, company name, or
// role title in enhanced back to the original value at the same index.
func Experiences(enhanced, original []types.Experience) []Violation {
	var violations []Violation
	n := min(len(enhanced), len(original))
	for i := 0; i < n; i++ {
		if !enhanced[i].StartDate.Equal(original[i].StartDate) {
			violations = append(violations, Violation{
				Section: "experiences", Index: i, Field: "start_date",
				Got: enhanced[i].StartDate.String(), Want: original[i].StartDate.String(),
			})
			enhanced[i].StartDate = original[i].StartDate
		}
		if !enhanced[i].EndDate.Equal(original[i].EndDate) {
			violations = append(violations, Violation{
				Section: "experiences", Index: i, Field: "end_date",
				Got: enhanced[i].EndDate.String(), Want: original[i].EndDate.String(),
			})
			enhanced[i].EndDate = original[i].EndDate
		}
		if enhanced[i].CompanyName != original[i].CompanyName {
			violations = append(violations, Violation{
				Section: "experiences", Index: i, Field: "company_name",
				Got: enhanced[i].CompanyName, Want: original[i].CompanyName,
			})
			enhanced[i].CompanyName = original[i].CompanyName
		}
		if enhanced[i].RoleTitle != original[i].RoleTitle {
			violations = append(violations, Violation{
				Section: "experiences", Index: i, Field: "role_title",
				Got: enhanced[i].RoleTitle, Want: original[i].RoleTitle,
			})
			enhanced[i].RoleTitle = original[i].RoleTitle
		}
	}
	return violations
}

// Educations reverts any changed start date, end date, university name, or
// degree in enhanced back to the original value at the same index.
func Educations(enhanced, original []types.Education) []Violation {
	var violations []Violation
	n := min(len(enhanced), len(original))
	for i := 0; i < n; i++ {
		if !enhanced[i].StartDate.Equal(original[i].StartDate) {
			violations = append(violations, Violation{
				Section: "educations", Index: i, Field: "start_date",
				Got: enhanced[i].StartDate.String(), Want: original[i].StartDate.String(),
			})
			enhanced[i].StartDate = original[i].StartDate
		}
		if !enhanced[i].EndDate.Equal(original[i].EndDate) {
			violations = append(violations, Violation{
				Section: "educations", Index: i, Field: "end_date",
				Got: enhanced[i].EndDate.String(), Want: original[i].EndDate.String(),
			})
			enhanced[i].EndDate = original[i].EndDate
		}
		if enhanced[i].UniversityName != original[i].UniversityName {
			violations = append(violations, Violation{
				Section: "educations", Index: i, Field: "university_name",
				Got: enhanced[i].UniversityName, Want: original[i].UniversityName,
			})
			enhanced[i].UniversityName = original[i].UniversityName
		}
		if enhanced[i].Degree != original[i].Degree {
			violations = append(violations, Violation{
				Section: "educations", Index: i, Field: "degree",
				Got: enhanced[i].Degree, Want: original[i].Degree,
			})
			enhanced[i].Degree = original[i].Degree
		}
	}
	return violations
}

// Projects enforces two rules: a project name must not be a bare URL, and a
// project link, when present, must be a well-formed http or https URL.
// Offending fields are reverted to the original value at the same index.
func Projects(enhanced, original []types.Project) []Violation {
	var violations []Violation
	n := min(len(enhanced), len(original))
	for i := 0; i < n; i++ {
		if looksLikeURL(enhanced[i].ProjectName) {
			violations = append(violations, Violation{
				Section: "projects", Index: i, Field: "project_name",
				Got: enhanced[i].ProjectName, Want: original[i].ProjectName,
			})
			enhanced[i].ProjectName = original[i].ProjectName
		}
		if enhanced[i].ProjectLink != "" && !validLink(enhanced[i].ProjectLink) {
			violations = append(violations, Violation{
				Section: "projects", Index: i, Field: "project_link",
				Got: enhanced[i].ProjectLink, Want: original[i].ProjectLink,
			})
			enhanced[i].ProjectLink = original[i].ProjectLink
		}
	}
	return violations
}

func looksLikeURL(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func validLink(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
