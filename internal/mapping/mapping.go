// Package mapping implements the scoring stage: one structured model call
// that compares a resume against a job description and yields matched skills,
// matched requirements, gaps, and a bounded 1-10 score.
package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/prompts"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/schemas"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// ScoreRangeError reports a match score outside [1,10]. The score is a
// contract on model output: it is never clamped or defaulted, and the error
// is fatal for the request.
type ScoreRangeError struct {
	Score int
}

func (e *ScoreRangeError) Error() string {
	return fmt.Sprintf("match_score must be between %d and %d, got %d",
		types.MinMatchScore, types.MaxMatchScore, e.Score)
}

// Options controls the mapping call. Attempts defaults to 1: the stage
// fast-fails by default so a broken model response does not cascade cost
// through the rest of the pipeline, but the retry budget is configuration,
// not structure.
type Options struct {
	Attempts int
	Backoff  []time.Duration
	Timeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = 1
	}
	if len(o.Backoff) == 0 {
		o.Backoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return o
}

// Map compares resume and jd via the gateway and returns a validated
// MappingResult. Nil list fields are normalized to empty slices so no null
// propagates downstream; an out-of-range score is a *ScoreRangeError and is
// never retried.
func Map(ctx context.Context, client llm.Client, resume types.Resume, jd types.JobDescription, opts Options, log *zap.Logger) (*types.MappingResult, llm.Usage, error) {
	opts = opts.withDefaults()

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("failed to encode resume: %w", err)
	}
	jdJSON, err := json.Marshal(jd)
	if err != nil {
		return nil, llm.Usage{}, fmt.Errorf("failed to encode job description: %w", err)
	}

	system := prompts.MustGet("mapping.json", "map-system")
	user := prompts.Format(prompts.MustGet("mapping.json", "map-user"), map[string]string{
		"JobDescription": string(jdJSON),
		"Resume":         string(resumeJSON),
	})

	var (
		lastErr error
		usage   llm.Usage
	)
	for attempt := 0; attempt < opts.Attempts; attempt++ {
		if attempt > 0 {
			delay := opts.Backoff[min(attempt-1, len(opts.Backoff)-1)]
			log.Warn("mapping retry", zap.Int("attempt", attempt+1), zap.Duration("after", delay), zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, usage, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		resp, err := client.GenerateStructured(callCtx, schemas.MappingResultSchema(), system, user, llm.TierStandard)
		cancel()
		usage.Add(resp.Usage)
		if err != nil {
			lastErr = err
			continue
		}

		result, err := decode(resp.Text)
		if err != nil {
			var sre *ScoreRangeError
			if errors.As(err, &sre) {
				// Invariant violation in otherwise well-formed output: fatal, not retried.
				return nil, usage, err
			}
			lastErr = err
			continue
		}

		log.Info("mapping complete",
			zap.Int("match_score", result.MatchScore),
			zap.Int("matched_skills", len(result.MatchedSkills)),
			zap.Int("matched_requirements", len(result.MatchedRequirements)),
			zap.Int("gaps", len(result.Gaps)))
		return result, usage, nil
	}

	return nil, usage, fmt.Errorf("mapping failed after %d attempt(s): %w", opts.Attempts, lastErr)
}

// decode parses and validates raw mapping JSON from the model.
func decode(raw string) (*types.MappingResult, error) {
	if err := schemas.Validate("mapping_result.json", raw); err != nil {
		return nil, &llm.MalformedOutputError{Message: "mapping result rejected by schema", Cause: err}
	}

	var result types.MappingResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &llm.MalformedOutputError{Message: "failed to parse mapping result", Cause: err}
	}

	if !result.ScoreInRange() {
		return nil, &ScoreRangeError{Score: result.MatchScore}
	}

	if result.MatchedSkills == nil {
		result.MatchedSkills = []string{}
	}
	if result.MatchedRequirements == nil {
		result.MatchedRequirements = []string{}
	}
	if result.Gaps == nil {
		result.Gaps = []string{}
	}
	return &result, nil
}
