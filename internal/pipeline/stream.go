package pipeline

import (
	"context"
	"time"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/enhance"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// Event types emitted by RunStream in addition to the per-section events
// from the enhancement orchestrator.
const (
	EventMappingStart    enhance.EventType = "mapping_start"
	EventMappingComplete enhance.EventType = "mapping_complete"
	EventComplete        enhance.EventType = "complete"
)

// StreamEvent wraps an orchestrator event with run-level context. MatchScore
// is set from mapping_complete onward; State rides only on the terminal
// complete event.
type StreamEvent struct {
	enhance.Event
	MatchScore int            `json:"match_score,omitempty"`
	State      *WorkflowState `json:"state,omitempty"`
}

// RunStream executes the workflow in streaming mode, pushing events to the
// channel as stages progress. The stream always ends with exactly one
// terminal event, complete or error, before the function returns. A low
// score still terminates with complete; the feedback message travels in the
// final state. The caller owns the channel and closes it after return.
func (r *Runner) RunStream(ctx context.Context, resume types.Resume, jd types.JobDescription, events chan<- StreamEvent) error {
	start := time.Now()
	matchScore := 0

	send := func(ev StreamEvent) {
		ev.Timestamp = time.Now().UTC()
		ev.ElapsedMS = time.Since(start).Milliseconds()
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	send(StreamEvent{Event: enhance.Event{Type: EventMappingStart}})

	sink := func(ev enhance.Event) {
		send(StreamEvent{Event: ev, MatchScore: matchScore})
	}
	onMapped := func(score int) {
		matchScore = score
		send(StreamEvent{Event: enhance.Event{Type: EventMappingComplete}, MatchScore: score})
	}

	state, err := r.run(ctx, resume, jd, enhance.ModeStreaming, sink, onMapped)
	if err != nil {
		send(StreamEvent{
			Event:      enhance.Event{Type: enhance.EventError, Message: err.Error()},
			MatchScore: matchScore,
		})
		return err
	}

	send(StreamEvent{
		Event:      enhance.Event{Type: EventComplete, Progress: 100},
		MatchScore: matchScore,
		State:      state,
	})
	return nil
}
