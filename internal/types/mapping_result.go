package types

// Score bounds for MappingResult.MatchScore. The bounds are a contract on
// model output: a score outside them is a stage failure, never clamped.
const (
	MinMatchScore = 1
	MaxMatchScore = 10
)

// MappingResult is the outcome of comparing a resume against a job
// description. It gates the enhancement branch and seeds every per-section
// rewrite prompt.
type MappingResult struct {
	MatchedSkills       []string `json:"matched_skills"`
	MatchedRequirements []string `json:"matched_requirements"`
	Gaps                []string `json:"gaps"`
	MatchScore          int      `json:"match_score"`
}

// ScoreInRange reports whether the match score lies in [MinMatchScore, MaxMatchScore].
func (m MappingResult) ScoreInRange() bool {
	return m.MatchScore >= MinMatchScore && m.MatchScore <= MaxMatchScore
}
