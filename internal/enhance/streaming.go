package enhance

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/prompts"
)

// streamSection consumes one streaming call, emitting cadence-gated delta
// events while text arrives. The accumulated text is parsed only after the
// stream ends; previews surfaced along the way are best effort and never
// authoritative.
func (s *sectionalStrategy) streamSection(ctx context.Context, runStart time.Time, index int, section Section, user string) (string, llm.Usage, error) {
	system := prompts.MustGet("enhance.json", "enhance-section-system")
	stream, err := s.client.StreamText(ctx, system, user, llm.TierStandard)
	if err != nil {
		return "", llm.Usage{}, err
	}

	var (
		accumulated strings.Builder
		pending     strings.Builder
		lastEmit    time.Time
	)
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", stream.Usage(), err
		}
		if chunk == "" {
			continue
		}
		accumulated.WriteString(chunk)
		pending.WriteString(chunk)

		if time.Since(lastEmit) < s.opts.DeltaInterval || pending.Len() < s.opts.DeltaMinChars {
			continue
		}

		text := accumulated.String()
		ev := Event{
			Type:         EventSectionDelta,
			Section:      section,
			SectionIndex: index,
			Delta:        pending.String(),
			Accumulated:  text,
			Progress:     progressAt(index, sectionFraction(len(text))),
			ElapsedMS:    time.Since(runStart).Milliseconds(),
		}
		if preview, ok := ExtractPreview(text); ok {
			ev.Preview = preview
		}
		s.sink.emit(ev)
		pending.Reset()
		lastEmit = time.Now()
	}

	raw := llm.CleanJSONBlock(accumulated.String())
	return raw, stream.Usage(), nil
}

// sectionFraction estimates within-section progress from accumulated bytes.
// Capped below 1 so a section never reads as done before its stream ends.
func sectionFraction(chars int) float64 {
	f := float64(chars) / 2000
	if f > 0.9 {
		f = 0.9
	}
	return f
}
