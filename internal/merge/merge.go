// Package merge assembles the final resume from the original and whatever
// the enhancement stage produced. It is pure: inputs are never mutated,
// every absent or failed section falls back to the original, and
// personal information is carried over untouched.
package merge

import (
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/validation"
)

// Merge builds the enhanced resume. A present section is authoritative even
// when its enhanced value is empty; only a nil section falls back to the
// original. Enhanced section slices are copied before validation so
// protected-field reverts never write back into the caller's output struct.
// The returned violations list every revert applied.
func Merge(original types.Resume, out types.FullEnhancementOutput) (types.Resume, []validation.Violation) {
	merged := original
	var violations []validation.Violation

	if out.Summary != nil {
		merged.Summary = out.Summary.Enhanced
	}

	if out.Experiences != nil {
		enhanced := copyExperiences(out.Experiences.Enhanced)
		violations = append(violations, validation.Experiences(enhanced, original.Experiences)...)
		merged.Experiences = enhanced
	}

	if out.Educations != nil {
		enhanced := append([]types.Education(nil), out.Educations.Enhanced...)
		violations = append(violations, validation.Educations(enhanced, original.Educations)...)
		merged.Educations = enhanced
	}

	if out.Skills != nil {
		merged.Skills = append([]types.Skill(nil), out.Skills.Enhanced...)
	}

	if out.Certifications != nil {
		merged.Certifications = append([]types.Certification(nil), out.Certifications.Enhanced...)
	}

	if out.Languages != nil {
		merged.Languages = append([]types.Language(nil), out.Languages.Enhanced...)
	}

	if out.Projects != nil {
		enhanced := append([]types.Project(nil), out.Projects.Enhanced...)
		violations = append(violations, validation.Projects(enhanced, original.Projects)...)
		merged.Projects = enhanced
	}

	merged.PersonalInfo = original.PersonalInfo
	return merged, violations
}

// copyExperiences deep-copies the description slices so revert writes and
// caller-side edits stay independent.
func copyExperiences(in []types.Experience) []types.Experience {
	out := make([]types.Experience, len(in))
	for i, exp := range in {
		out[i] = exp
		out[i].Description = append([]string(nil), exp.Description...)
	}
	return out
}
