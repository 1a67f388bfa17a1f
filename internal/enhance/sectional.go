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

// sectionalStrategy walks the seven sections in order, calling the model
// once per section with retry and backoff. A section that exhausts its
// attempts is recorded and skipped; the run fails only when the context is
// canceled or every section fails.
type sectionalStrategy struct {
	client    llm.Client
	opts      Options
	log       *zap.Logger
	sink      Sink
	streaming bool
}

func (s *sectionalStrategy) Enhance(ctx context.Context, resume types.Resume, mapping types.MappingResult) (*Result, error) {
	start := time.Now()

	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mapping result: %w", err)
	}

	result := &Result{
		Timings: make(map[Section]time.Duration, len(Sections)),
		Errors:  make(map[Section]string),
		Usage:   make(map[string]llm.Usage, len(Sections)),
	}

	for i, section := range Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sectionStart := time.Now()
		s.sink.emit(Event{
			Type:         EventSectionStart,
			Section:      section,
			SectionIndex: i,
			Progress:     progressAt(i, 0),
			ElapsedMS:    time.Since(start).Milliseconds(),
		})

		user := prompts.Format(prompts.MustGet("enhance.json", "enhance-section-user"), map[string]string{
			"Resume":        string(resumeJSON),
			"MappingResult": string(mappingJSON),
			"Section":       string(section),
		})

		raw, usage, err := s.callSection(ctx, start, i, section, user)
		result.Usage[string(section)] = usage
		result.Timings[section] = time.Since(sectionStart)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Errors[section] = err.Error()
			result.Failed++
			s.log.Warn("section enhancement failed",
				zap.String("section", string(section)),
				zap.Error(err))
			s.sink.emit(Event{
				Type:         EventError,
				Section:      section,
				SectionIndex: i,
				Message:      err.Error(),
				Progress:     progressAt(i+1, 0),
				ElapsedMS:    time.Since(start).Milliseconds(),
			})
			continue
		}

		spec := sectionSpecs[section]
		if err := spec.decode([]byte(raw), &result.Output); err != nil {
			result.Errors[section] = err.Error()
			result.Failed++
			s.sink.emit(Event{
				Type:         EventError,
				Section:      section,
				SectionIndex: i,
				Message:      err.Error(),
				Progress:     progressAt(i+1, 0),
				ElapsedMS:    time.Since(start).Milliseconds(),
			})
			continue
		}

		result.Succeeded++
		s.sink.emit(Event{
			Type:         EventSectionComplete,
			Section:      section,
			SectionIndex: i,
			Payload:      json.RawMessage(raw),
			Progress:     progressAt(i+1, 0),
			ElapsedMS:    time.Since(start).Milliseconds(),
		})
	}

	result.Elapsed = time.Since(start)
	if result.Succeeded == 0 {
		return nil, fmt.Errorf("all %d sections failed", len(Sections))
	}

	s.log.Info("sectional enhancement complete",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// callSection runs one section with retry. It returns validated raw JSON.
func (s *sectionalStrategy) callSection(ctx context.Context, runStart time.Time, index int, section Section, user string) (string, llm.Usage, error) {
	spec := sectionSpecs[section]
	var (
		lastErr error
		usage   llm.Usage
	)
	for attempt := 0; attempt < s.opts.Attempts; attempt++ {
		if attempt > 0 {
			s.log.Warn("section retry",
				zap.String("section", string(section)),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			if err := sleepBackoff(ctx, s.opts.Backoff, attempt); err != nil {
				return "", usage, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.opts.SectionTimeout)
		var (
			raw string
			u   llm.Usage
			err error
		)
		if s.streaming {
			raw, u, err = s.streamSection(callCtx, runStart, index, section, user)
		} else {
			raw, u, err = s.generateSection(callCtx, section, user)
		}
		cancel()
		usage.Add(u)
		if err != nil {
			lastErr = err
			continue
		}

		if err := validateSection(spec, raw); err != nil {
			lastErr = err
			continue
		}
		return raw, usage, nil
	}
	return "", usage, fmt.Errorf("section %s failed after %d attempt(s): %w", section, s.opts.Attempts, lastErr)
}

func (s *sectionalStrategy) generateSection(ctx context.Context, section Section, user string) (string, llm.Usage, error) {
	system := prompts.MustGet("enhance.json", "enhance-section-system")
	resp, err := s.client.GenerateStructured(ctx, sectionSpecs[section].respSchema(), system, user, llm.TierStandard)
	if err != nil {
		return "", resp.Usage, err
	}
	return resp.Text, resp.Usage, nil
}

func validateSection(spec sectionSpec, raw string) error {
	if err := schemas.Validate(spec.schemaFile, raw); err != nil {
		return &llm.MalformedOutputError{
			Message: fmt.Sprintf("section %s rejected by schema", spec.name),
			Cause:   err,
		}
	}
	var probe struct {
		Enhanced json.RawMessage `json:"enhanced"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil || len(probe.Enhanced) == 0 {
		return &llm.MalformedOutputError{Message: fmt.Sprintf("section %s missing enhanced payload", spec.name)}
	}
	return nil
}

// progressAt maps a section boundary to an overall percentage. within is a
// 0..1 fraction of the current section used by streaming deltas.
func progressAt(completed int, within float64) float64 {
	total := float64(len(Sections))
	p := (float64(completed) + within) / total * 100
	if p > 100 {
		p = 100
	}
	return p
}
