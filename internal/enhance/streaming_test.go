package enhance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm/llmtest"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// chunked splits a payload into fixed-size stream chunks.
func chunked(payload string, size int) []string {
	var chunks []string
	for len(payload) > size {
		chunks = append(chunks, payload[:size])
		payload = payload[size:]
	}
	return append(chunks, payload)
}

func streamingOptions() Options {
	return Options{
		Attempts:      2,
		Backoff:       []time.Duration{time.Millisecond},
		DeltaInterval: time.Nanosecond,
		DeltaMinChars: 1,
	}
}

func TestStreamingEnhanceAllSections(t *testing.T) {
	client := &llmtest.Client{
		StreamFn: func(_, user string, _ llm.ModelTier) ([]string, error) {
			return chunked(sectionPayloads[sectionOf(user)], 16), nil
		},
	}
	rec := &eventRecorder{}

	strategy, err := NewStrategy(ModeStreaming, client, streamingOptions(), zap.NewNop(), rec.sink())
	require.NoError(t, err)

	result, err := strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 9})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	require.NotNil(t, result.Output.Summary)
	assert.Equal(t, "Backend engineer focused on billing systems.", result.Output.Summary.Enhanced)
}

func TestStreamingEmitsDeltasBetweenStartAndComplete(t *testing.T) {
	client := &llmtest.Client{
		StreamFn: func(_, user string, _ llm.ModelTier) ([]string, error) {
			return chunked(sectionPayloads[sectionOf(user)], 8), nil
		},
	}
	rec := &eventRecorder{}

	strategy, err := NewStrategy(ModeStreaming, client, streamingOptions(), zap.NewNop(), rec.sink())
	require.NoError(t, err)
	_, err = strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 9})
	require.NoError(t, err)

	events := rec.all()
	// Per section: exactly one start, at least one delta, exactly one terminal.
	type counts struct{ start, delta, terminal int }
	perSection := make(map[Section]*counts)
	for _, section := range Sections {
		perSection[section] = &counts{}
	}

	var currentIndex = -1
	for _, ev := range events {
		c := perSection[ev.Section]
		require.NotNil(t, c, "event for unknown section %q", ev.Section)
		switch ev.Type {
		case EventSectionStart:
			c.start++
			assert.Equal(t, currentIndex+1, ev.SectionIndex)
			currentIndex = ev.SectionIndex
		case EventSectionDelta:
			c.delta++
			assert.Equal(t, currentIndex, ev.SectionIndex)
			assert.NotEmpty(t, ev.Delta)
			assert.NotEmpty(t, ev.Accumulated)
		case EventSectionComplete, EventError:
			c.terminal++
			assert.Equal(t, currentIndex, ev.SectionIndex)
		}
	}

	for section, c := range perSection {
		assert.Equal(t, 1, c.start, "section %s start events", section)
		assert.GreaterOrEqual(t, c.delta, 1, "section %s delta events", section)
		assert.Equal(t, 1, c.terminal, "section %s terminal events", section)
	}
	assert.Equal(t, len(Sections)-1, currentIndex)
}

func TestStreamingDeltaCadenceHonorsMinChars(t *testing.T) {
	client := &llmtest.Client{
		StreamFn: func(_, user string, _ llm.ModelTier) ([]string, error) {
			return chunked(sectionPayloads[sectionOf(user)], 4), nil
		},
	}
	rec := &eventRecorder{}

	opts := streamingOptions()
	opts.DeltaMinChars = 1000 // larger than any section payload
	strategy, err := NewStrategy(ModeStreaming, client, opts, zap.NewNop(), rec.sink())
	require.NoError(t, err)
	_, err = strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 9})
	require.NoError(t, err)

	for _, ev := range rec.all() {
		assert.NotEqual(t, EventSectionDelta, ev.Type)
	}
}

func TestStreamingParseFailureRetriesThenFails(t *testing.T) {
	projectCalls := 0
	client := &llmtest.Client{
		StreamFn: func(_, user string, _ llm.ModelTier) ([]string, error) {
			section := sectionOf(user)
			if section == SectionProjects {
				projectCalls++
				return []string{`{"enhanced": [`}, nil // truncated stream
			}
			return chunked(sectionPayloads[section], 16), nil
		},
	}

	strategy, err := NewStrategy(ModeStreaming, client, streamingOptions(), zap.NewNop(), nil)
	require.NoError(t, err)

	result, err := strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 9})
	require.NoError(t, err)

	assert.Equal(t, 2, projectCalls)
	assert.Equal(t, 6, result.Succeeded)
	assert.Contains(t, result.Errors, SectionProjects)
	assert.Nil(t, result.Output.Projects)
}

func TestStreamingStripsMarkdownFences(t *testing.T) {
	client := &llmtest.Client{
		StreamFn: func(_, user string, _ llm.ModelTier) ([]string, error) {
			payload := "```json\n" + sectionPayloads[sectionOf(user)] + "\n```"
			return chunked(payload, 16), nil
		},
	}

	strategy, err := NewStrategy(ModeStreaming, client, streamingOptions(), zap.NewNop(), nil)
	require.NoError(t, err)

	result, err := strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 9})
	require.NoError(t, err)
	assert.Equal(t, 7, result.Succeeded)
}
