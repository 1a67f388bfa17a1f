package enhance

import "time"

// EventType labels an orchestrator progress event.
type EventType string

const (
	EventSectionStart    EventType = "section_start"
	EventSectionDelta    EventType = "section_delta"
	EventSectionComplete EventType = "section_complete"
	EventError           EventType = "error"
)

// Event is one progress notification emitted while a section is processed.
// For every section the sequence is section_start, zero or more
// section_delta, then exactly one of section_complete or error.
// SectionIndex runs contiguously from 0 through 6 in processing order.
type Event struct {
	Type         EventType `json:"type"`
	Section      Section   `json:"section,omitempty"`
	SectionIndex int       `json:"section_index"`
	Delta        string    `json:"delta_text,omitempty"`
	Accumulated  string    `json:"accumulated_text,omitempty"`
	Preview      string    `json:"preview,omitempty"`
	Payload      any       `json:"payload,omitempty"`
	Progress     float64   `json:"progress_percent"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	Message      string    `json:"message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Sink receives orchestrator events. A nil sink disables emission. Sinks
// are called synchronously from the orchestrator goroutine and must not
// block for long.
type Sink func(Event)

func (s Sink) emit(ev Event) {
	if s == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	s(ev)
}
