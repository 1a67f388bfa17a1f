// Package feedback produces the candidate-facing message returned when the
// match score falls below the routing threshold. The message explains the
// gap between the resume and the role using the mapping result.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/prompts"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Generate asks the model for a short feedback message grounded in the
// mapping result. A blank response is an error: the low-score branch must
// always hand the caller something actionable.
func Generate(ctx context.Context, client llm.Client, mapping types.MappingResult, threshold int, log *zap.Logger) (string, llm.Usage, error) {
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("failed to encode mapping result: %w", err)
	}

	system := prompts.MustGet("feedback.json", "feedback-system")
	user := prompts.Format(prompts.MustGet("feedback.json", "feedback-user"), map[string]string{
		"MappingResult": string(mappingJSON),
		"Score":         strconv.Itoa(mapping.MatchScore),
		"Threshold":     strconv.Itoa(threshold),
	})

	resp, err := client.GenerateText(ctx, system, user, llm.TierLite)
	if err != nil {
		return "", resp.Usage, fmt.Errorf("feedback generation failed: %w", err)
	}

	message := strings.TrimSpace(resp.Text)
	if message == "" {
		return "", resp.Usage, &llm.MalformedOutputError{Message: "feedback message is empty"}
	}

	log.Info("feedback generated",
		zap.Int("match_score", mapping.MatchScore),
		zap.Int("threshold", threshold),
		zap.Int("message_len", len(message)))
	return message, resp.Usage, nil
}
