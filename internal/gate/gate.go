// Package gate holds the routing decision taken after the mapping stage.
// It is pure so it can be unit-tested with arbitrary thresholds and has no
// network dependency.
package gate

import "github.com/AliTechM/ai-profile-personalization-engine/internal/types"

// Decision names one of the two workflow branches.
type Decision string

// Routing outcomes.
const (
	DecisionFeedback Decision = "feedback"
	DecisionEnhance  Decision = "enhance"
)

// Route decides the branch after mapping: scores below the threshold go to
// the feedback branch, everything else (boundary included) to enhancement.
func Route(result types.MappingResult, threshold int) Decision {
	if result.MatchScore < threshold {
		return DecisionFeedback
	}
	return DecisionEnhance
}
