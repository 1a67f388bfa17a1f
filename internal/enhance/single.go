package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/prompts"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/schemas"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// singleCallStrategy enhances the whole resume in one structured request.
// There is no per-section granularity: one malformed response fails the
// entire run, and no progress events are emitted.
type singleCallStrategy struct {
	client llm.Client
	opts   Options
	log    *zap.Logger
}

func (s *singleCallStrategy) Enhance(ctx context.Context, resume types.Resume, mapping types.MappingResult) (*Result, error) {
	start := time.Now()

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping result: %w", err)
	}

	system := prompts.MustGet("enhance.json", "enhance-system")
	user := prompts.Format(prompts.MustGet("enhance.json", "enhance-full-user"), map[string]string{
		"Resume":        string(resumeJSON),
		"MappingResult": string(mappingJSON),
	})

	var (
		lastErr error
		usage   llm.Usage
	)
	for attempt := 0; attempt < s.opts.Attempts; attempt++ {
		if attempt > 0 {
			s.log.Warn("single-call enhancement retry", zap.Int("attempt", attempt+1), zap.Error(lastErr))
			if err := sleepBackoff(ctx, s.opts.Backoff, attempt); err != nil {
				return nil, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.opts.SectionTimeout)
		resp, err := s.client.GenerateStructured(callCtx, schemas.FullEnhancementSchema(), system, user, llm.TierAdvanced)
		cancel()
		usage.Add(resp.Usage)
		if err != nil {
			lastErr = err
			continue
		}

		output, err := decodeFull(resp.Text)
		if err != nil {
			lastErr = err
			continue
		}

		elapsed := time.Since(start)
		populated := populatedSections(*output)
		s.log.Info("single-call enhancement complete",
			zap.Int("populated_sections", populated),
			zap.Duration("elapsed", elapsed))
		return &Result{
			Output:    *output,
			Timings:   map[Section]time.Duration{},
			Errors:    map[Section]string{},
			Usage:     map[string]llm.Usage{"full": usage},
			Succeeded: populated,
			Failed:    0,
			Elapsed:   elapsed,
		}, nil
	}

	return nil, fmt.Errorf("single-call enhancement failed after %d attempt(s): %w", s.opts.Attempts, lastErr)
}

// populatedSections counts the sections the model actually returned. The
// whole-resume schema marks none of them required, so a valid response may
// omit sections; omitted ones fall back to the original at merge time.
func populatedSections(out types.FullEnhancementOutput) int {
	n := 0
	if out.Summary != nil {
		n++
	}
	if out.Experiences != nil {
		n++
	}
	if out.Educations != nil {
		n++
	}
	if out.Skills != nil {
		n++
	}
	if out.Certifications != nil {
		n++
	}
	if out.Languages != nil {
		n++
	}
	if out.Projects != nil {
		n++
	}
	return n
}

func decodeFull(raw string) (*types.FullEnhancementOutput, error) {
	if err := schemas.Validate("full_enhancement.json", raw); err != nil {
		return nil, &llm.MalformedOutputError{Message: "full enhancement rejected by schema", Cause: err}
	}
	var output types.FullEnhancementOutput
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		return nil, &llm.MalformedOutputError{Message: "failed to parse full enhancement", Cause: err}
	}
	return &output, nil
}
