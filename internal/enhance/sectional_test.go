package enhance

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm/llmtest"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// sectionPayloads maps each section to a minimal valid model response.
var sectionPayloads = map[Section]string{
	SectionSummary:        `{"enhanced": "Backend engineer focused on billing systems.", "reasons": [{"field_or_location": "summary", "reason": "targeted at the role"}]}`,
	SectionExperiences:    `{"enhanced": [{"role_title": "Engineer", "company_name": "Acme", "start_date": "2020-01", "description": ["Shipped the billing API"]}], "reasons": []}`,
	SectionEducations:     `{"enhanced": [{"degree": "BSc", "major": "Computer Science", "university_name": "State University", "start_date": "2015-09"}], "reasons": []}`,
	SectionSkills:         `{"enhanced": [{"skill_name": "Go", "skill_type": "technical"}], "reasons": []}`,
	SectionCertifications: `{"enhanced": [{"certification_name": "CKA", "issuing_organization": "CNCF"}], "reasons": []}`,
	SectionLanguages:      `{"enhanced": [{"language": "English", "proficiency_level": "C1"}], "reasons": []}`,
	SectionProjects:       `{"enhanced": [{"project_name": "Tracker", "description": ["Inventory tracking tool"]}], "reasons": []}`,
}

// sectionOf pulls the requested section name out of the user prompt. The
// prompt quotes the target section, which keeps resume JSON keys from
// matching.
func sectionOf(user string) Section {
	for _, section := range Sections {
		if strings.Contains(user, "'"+string(section)+"'") {
			return section
		}
	}
	return ""
}

func fastOptions() Options {
	return Options{
		Attempts: 2,
		Backoff:  []time.Duration{time.Millisecond},
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink() Sink {
	return func(ev Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
	}
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestSequentialAllSectionsSucceed(t *testing.T) {
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, user string, _ llm.ModelTier) (llm.Response, error) {
			return llm.Response{Text: sectionPayloads[sectionOf(user)]}, nil
		},
	}
	rec := &eventRecorder{}

	strategy, err := NewStrategy(ModeSequential, client, fastOptions(), zap.NewNop(), rec.sink())
	require.NoError(t, err)

	result, err := strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 8})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.False(t, result.Output.IsEmpty())
	require.NotNil(t, result.Output.Summary)
	assert.Equal(t, "Backend engineer focused on billing systems.", result.Output.Summary.Enhanced)
	require.NotNil(t, result.Output.Projects)
	assert.Equal(t, "Tracker", result.Output.Projects.Enhanced[0].ProjectName)
}

func TestSequentialPartialFailureContinues(t *testing.T) {
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, user string, _ llm.ModelTier) (llm.Response, error) {
			section := sectionOf(user)
			if section == SectionProjects {
				return llm.Response{Text: `not even json`}, nil
			}
			return llm.Response{Text: sectionPayloads[section]}, nil
		},
	}
	rec := &eventRecorder{}

	strategy, err := NewStrategy(ModeSequential, client, fastOptions(), zap.NewNop(), rec.sink())
	require.NoError(t, err)

	result, err := strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 8})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors, SectionProjects)
	assert.Nil(t, result.Output.Projects)
	assert.NotNil(t, result.Output.Summary)
}

func TestSequentialRetriesMalformedSection(t *testing.T) {
	summaryCalls := 0
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, user string, _ llm.ModelTier) (llm.Response, error) {
			section := sectionOf(user)
			if section == SectionSummary {
				summaryCalls++
				if summaryCalls == 1 {
					return llm.Response{Text: `{"wrong": "shape"}`}, nil
				}
			}
			return llm.Response{Text: sectionPayloads[section]}, nil
		},
	}

	strategy, err := NewStrategy(ModeSequential, client, fastOptions(), zap.NewNop(), nil)
	require.NoError(t, err)

	result, err := strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 8})
	require.NoError(t, err)

	assert.Equal(t, 2, summaryCalls)
	assert.Equal(t, 7, result.Succeeded)
}

func TestSequentialEventOrdering(t *testing.T) {
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, user string, _ llm.ModelTier) (llm.Response, error) {
			section := sectionOf(user)
			if section == SectionSkills {
				return llm.Response{Text: `broken`}, nil
			}
			return llm.Response{Text: sectionPayloads[section]}, nil
		},
	}
	rec := &eventRecorder{}

	strategy, err := NewStrategy(ModeSequential, client, fastOptions(), zap.NewNop(), rec.sink())
	require.NoError(t, err)
	_, err = strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 8})
	require.NoError(t, err)

	events := rec.all()
	require.Len(t, events, 14)

	for i, section := range Sections {
		start := events[2*i]
		terminal := events[2*i+1]

		assert.Equal(t, EventSectionStart, start.Type)
		assert.Equal(t, section, start.Section)
		assert.Equal(t, i, start.SectionIndex)

		assert.Equal(t, section, terminal.Section)
		assert.Equal(t, i, terminal.SectionIndex)
		if section == SectionSkills {
			assert.Equal(t, EventError, terminal.Type)
			assert.NotEmpty(t, terminal.Message)
		} else {
			assert.Equal(t, EventSectionComplete, terminal.Type)
		}
		assert.GreaterOrEqual(t, terminal.Progress, start.Progress)
	}

	last := events[len(events)-1]
	assert.InDelta(t, 100, last.Progress, 0.01)
}

func TestAllSectionsFailingIsAnError(t *testing.T) {
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, _ string, _ llm.ModelTier) (llm.Response, error) {
			return llm.Response{}, &llm.TransientError{Message: "upstream down"}
		},
	}

	strategy, err := NewStrategy(ModeSequential, client, fastOptions(), zap.NewNop(), nil)
	require.NoError(t, err)

	_, err = strategy.Enhance(context.Background(), types.Resume{}, types.MappingResult{MatchScore: 8})
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "", want: ModeSingleCall},
		{input: "single-call", want: ModeSingleCall},
		{input: "sequential", want: ModeSequential},
		{input: "streaming", want: ModeStreaming},
		{input: "parallel", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("mode "+tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}
