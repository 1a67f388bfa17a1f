// Package enhance orchestrates the per-section rewriting of a resume against
// a mapping result. Three strategies share one contract: single-call does the
// whole resume in one structured request, sequential walks the seven sections
// with per-section retry, and streaming does the same while surfacing token
// deltas and best-effort previews as they arrive.
package enhance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Mode selects an enhancement strategy.
type Mode string

const (
	ModeSingleCall Mode = "single-call"
	ModeSequential Mode = "sequential"
	ModeStreaming  Mode = "streaming"
)

// ParseMode resolves a user-supplied mode string. Empty defaults to
// single-call; anything else unrecognized is an error.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeSingleCall, nil
	case ModeSingleCall, ModeSequential, ModeStreaming:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown enhancement mode %q", s)
	}
}

// Result aggregates the outcome of one enhancement run. Sections missing
// from Output failed or produced nothing; their errors are keyed in Errors.
// Usage is keyed per section name, or "full" for the single whole-resume
// call, which has no per-section breakdown.
type Result struct {
	Output    types.FullEnhancementOutput
	Timings   map[Section]time.Duration
	Errors    map[Section]string
	Usage     map[string]llm.Usage
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Options tunes retry and streaming behavior. Zero values take defaults:
// three attempts with 1s/2s/4s backoff, a 15 second per-section timeout,
// and delta emission gated at 250ms or 24 accumulated characters.
type Options struct {
	Attempts       int
	Backoff        []time.Duration
	SectionTimeout time.Duration
	DeltaInterval  time.Duration
	DeltaMinChars  int
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if len(o.Backoff) == 0 {
		o.Backoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	}
	if o.SectionTimeout <= 0 {
		o.SectionTimeout = 15 * time.Second
	}
	if o.DeltaInterval <= 0 {
		o.DeltaInterval = 250 * time.Millisecond
	}
	if o.DeltaMinChars <= 0 {
		o.DeltaMinChars = 24
	}
	return o
}

// Strategy runs one enhancement pass over the resume.
type Strategy interface {
	Enhance(ctx context.Context, resume types.Resume, mapping types.MappingResult) (*Result, error)
}

// NewStrategy constructs the strategy for mode. The sink may be nil; only
// sequential and streaming strategies emit events.
func NewStrategy(mode Mode, client llm.Client, opts Options, log *zap.Logger, sink Sink) (Strategy, error) {
	opts = opts.withDefaults()
	switch mode {
	case ModeSingleCall:
		return &singleCallStrategy{client: client, opts: opts, log: log}, nil
	case ModeSequential:
		return &sectionalStrategy{client: client, opts: opts, log: log, sink: sink, streaming: false}, nil
	case ModeStreaming:
		return &sectionalStrategy{client: client, opts: opts, log: log, sink: sink, streaming: true}, nil
	default:
		return nil, fmt.Errorf("unknown enhancement mode %q", mode)
	}
}

// sleepBackoff waits out the retry delay for attempt (1-based retry count),
// honoring context cancellation.
func sleepBackoff(ctx context.Context, backoff []time.Duration, attempt int) error {
	idx := attempt - 1
	if idx >= len(backoff) {
		idx = len(backoff) - 1
	}
	select {
	case <-time.After(backoff[idx]):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
