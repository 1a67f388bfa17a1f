package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/enhance"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/feedback"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/gate"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/mapping"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/merge"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/report"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Config tunes a Runner. Zero values take the defaults below.
type Config struct {
	ScoreThreshold  int
	MappingAttempts int
	SectionAttempts int
	Backoff         []time.Duration
	CallTimeout     time.Duration
	DeltaInterval   time.Duration
	DeltaMinChars   int
}

func (c Config) withDefaults() Config {
	if c.ScoreThreshold <= 0 {
		c.ScoreThreshold = 7
	}
	if c.MappingAttempts <= 0 {
		c.MappingAttempts = 1
	}
	if c.SectionAttempts <= 0 {
		c.SectionAttempts = 3
	}
	if len(c.Backoff) == 0 {
		c.Backoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 15 * time.Second
	}
	return c
}

// Runner executes the personalization workflow against one model client.
type Runner struct {
	client llm.Client
	cfg    Config
	log    *zap.Logger
}

// NewRunner builds a Runner. The client must not be nil.
func NewRunner(client llm.Client, cfg Config, log *zap.Logger) (*Runner, error) {
	if client == nil {
		return nil, &StateError{Message: "model client is required"}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{client: client, cfg: cfg.withDefaults(), log: log}, nil
}

// Run executes the synchronous workflow and returns the final state. Events
// emitted during enhancement are retained in the state minus the deltas,
// which only matter while the run is in flight.
func (r *Runner) Run(ctx context.Context, resume types.Resume, jd types.JobDescription, mode enhance.Mode) (*WorkflowState, error) {
	return r.run(ctx, resume, jd, mode, nil, nil)
}

func (r *Runner) run(ctx context.Context, resume types.Resume, jd types.JobDescription, mode enhance.Mode, sink enhance.Sink, onMapped func(score int)) (*WorkflowState, error) {
	state := &WorkflowState{
		RunID:          uuid.NewString(),
		Mode:           mode,
		Resume:         resume,
		JobDescription: jd,
		TokenUsage:     make(map[string]llm.Usage),
	}
	log := r.log.With(zap.String("run_id", state.RunID), zap.String("mode", string(mode)))

	mapped, usage, err := mapping.Map(ctx, r.client, resume, jd, mapping.Options{
		Attempts: r.cfg.MappingAttempts,
		Backoff:  r.cfg.Backoff,
		Timeout:  r.cfg.CallTimeout,
	}, log)
	state.TokenUsage["mapping"] = usage
	if err != nil {
		return state, fmt.Errorf("mapping stage failed: %w", err)
	}
	state.MappingResult = mapped
	if onMapped != nil {
		onMapped(mapped.MatchScore)
	}

	switch gate.Route(*mapped, r.cfg.ScoreThreshold) {
	case gate.DecisionFeedback:
		message, usage, err := feedback.Generate(ctx, r.client, *mapped, r.cfg.ScoreThreshold, log)
		state.TokenUsage["feedback"] = usage
		if err != nil {
			return state, fmt.Errorf("feedback stage failed: %w", err)
		}
		state.FeedbackMessage = message
		return state, nil

	case gate.DecisionEnhance:
		if err := r.enhanceAndMerge(ctx, state, sink, log); err != nil {
			return state, err
		}
		return state, nil
	}
	return state, &StateError{Message: "unreachable gate decision"}
}

func (r *Runner) enhanceAndMerge(ctx context.Context, state *WorkflowState, sink enhance.Sink, log *zap.Logger) error {
	collect := func(ev enhance.Event) {
		if ev.Type != enhance.EventSectionDelta {
			state.ProgressEvents = append(state.ProgressEvents, ev)
		}
		if sink != nil {
			sink(ev)
		}
	}

	strategy, err := enhance.NewStrategy(state.Mode, r.client, enhance.Options{
		Attempts:       r.cfg.SectionAttempts,
		Backoff:        r.cfg.Backoff,
		SectionTimeout: r.cfg.CallTimeout,
		DeltaInterval:  r.cfg.DeltaInterval,
		DeltaMinChars:  r.cfg.DeltaMinChars,
	}, log, collect)
	if err != nil {
		return err
	}

	result, err := strategy.Enhance(ctx, state.Resume, *state.MappingResult)
	if err != nil {
		return fmt.Errorf("enhancement stage failed: %w", err)
	}

	state.FullEnhancementOutput = &result.Output
	state.SectionTimings = make(map[enhance.Section]float64, len(result.Timings))
	for section, d := range result.Timings {
		state.SectionTimings[section] = float64(d.Milliseconds())
	}
	if len(result.Errors) > 0 {
		state.SectionErrors = result.Errors
	}
	for key, u := range result.Usage {
		state.TokenUsage["enhance:"+key] = u
	}

	merged, violations := merge.Merge(state.Resume, result.Output)
	for _, v := range violations {
		log.Warn("protected field reverted",
			zap.String("section", v.Section),
			zap.Int("index", v.Index),
			zap.String("field", v.Field))
	}
	state.EnhancedResume = &merged

	summary, ok, usage, err := report.Generate(ctx, r.client, result.Output, log)
	state.TokenUsage["report"] = usage
	if err != nil {
		return fmt.Errorf("report stage failed: %w", err)
	}
	if ok {
		state.ReportSummary = &summary
	}
	return nil
}
