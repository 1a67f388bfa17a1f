// Package report turns the accumulated change reasons into a short prose
// summary of what was enhanced and why. The report is best effort: it is
// absent when nothing changed, and a model failure here never fails the
// request that produced the enhancement.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/prompts"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Generate summarizes the change reasons in output. The boolean reports
// whether a summary exists: false when there were no changes to describe
// or when the model call failed. Model failures are logged and swallowed.
func Generate(ctx context.Context, client llm.Client, output types.FullEnhancementOutput, log *zap.Logger) (string, bool, llm.Usage, error) {
	reasons := output.AllReasons()
	if len(reasons) == 0 {
		return "", false, llm.Usage{}, nil
	}

	var sb strings.Builder
	for _, r := range reasons {
		fmt.Fprintf(&sb, "- %s: %s\n", r.FieldOrLocation, r.Reason)
	}

	system := prompts.MustGet("report.json", "report-system")
	user := prompts.Format(prompts.MustGet("report.json", "report-user"), map[string]string{
		"ChangeReasons": sb.String(),
	})

	resp, err := client.GenerateText(ctx, system, user, llm.TierLite)
	if err != nil {
		log.Warn("report generation failed, continuing without report", zap.Error(err))
		return "", false, resp.Usage, nil
	}

	summary := strings.TrimSpace(resp.Text)
	if summary == "" {
		log.Warn("report generation returned empty text, continuing without report")
		return "", false, resp.Usage, nil
	}

	log.Info("report generated", zap.Int("change_reasons", len(reasons)))
	return summary, true, resp.Usage, nil
}
