package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/enhance"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm/llmtest"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

var sectionPayloads = map[enhance.Section]string{
	enhance.SectionSummary:        `{"enhanced": "Billing-focused backend engineer.", "reasons": [{"field_or_location": "summary", "reason": "aligned with the role"}]}`,
	enhance.SectionExperiences:    `{"enhanced": [{"role_title": "Backend Engineer", "company_name": "Acme", "start_date": "2020-01", "description": ["Shipped the billing API"]}], "reasons": []}`,
	enhance.SectionEducations:     `{"enhanced": [{"degree": "BSc", "major": "Computer Science", "university_name": "State University", "start_date": "2015-09"}], "reasons": []}`,
	enhance.SectionSkills:         `{"enhanced": [{"skill_name": "Go", "skill_type": "technical"}], "reasons": []}`,
	enhance.SectionCertifications: `{"enhanced": [{"certification_name": "CKA", "issuing_organization": "CNCF"}], "reasons": []}`,
	enhance.SectionLanguages:      `{"enhanced": [{"language": "English", "proficiency_level": "C1"}], "reasons": []}`,
	enhance.SectionProjects:       `{"enhanced": [{"project_name": "Tracker", "description": ["Inventory tracking tool"]}], "reasons": []}`,
}

// sectionOf identifies which section a prompt targets; empty for the
// mapping prompt.
func sectionOf(user string) enhance.Section {
	for _, section := range enhance.Sections {
		if strings.Contains(user, "'"+string(section)+"'") {
			return section
		}
	}
	return ""
}

func mappingPayload(score int) string {
	return fmt.Sprintf(`{
		"matched_skills": ["Go"],
		"matched_requirements": ["Backend experience"],
		"gaps": ["Kubernetes"],
		"match_score": %d
	}`, score)
}

// scriptedClient answers mapping and section calls; failSections stream
// back garbage so those sections exhaust their retries.
func scriptedClient(score int, failSections ...enhance.Section) *llmtest.Client {
	failing := make(map[enhance.Section]bool)
	for _, s := range failSections {
		failing[s] = true
	}
	return &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, user string, _ llm.ModelTier) (llm.Response, error) {
			section := sectionOf(user)
			if section == "" {
				return llm.Response{Text: mappingPayload(score), Usage: llm.Usage{InputTokens: 20, OutputTokens: 10}}, nil
			}
			if failing[section] {
				return llm.Response{Text: "garbage"}, nil
			}
			return llm.Response{Text: sectionPayloads[section], Usage: llm.Usage{InputTokens: 5, OutputTokens: 5}}, nil
		},
		TextFn: func(system, _ string, _ llm.ModelTier) (llm.Response, error) {
			if strings.Contains(system, "not yet a strong match") {
				return llm.Response{Text: "Consider gaining Kubernetes experience before applying."}, nil
			}
			return llm.Response{Text: "The resume was tailored to emphasize billing work."}, nil
		},
	}
}

func fastConfig() Config {
	return Config{
		ScoreThreshold:  7,
		SectionAttempts: 2,
		Backoff:         []time.Duration{time.Millisecond},
	}
}

func testResume() types.Resume {
	return types.Resume{
		PersonalInfo: types.PersonalInfo{FullName: "Dana Smith", EmailAddress: "dana@example.com"},
		Summary:      "Backend engineer.",
		Experiences: []types.Experience{
			{RoleTitle: "Backend Engineer", CompanyName: "Acme", StartDate: types.NewDate(2020, time.January, 1),
				Description: []string{"Built billing services"}},
		},
		Projects: []types.Project{
			{ProjectName: "Tracker", Description: []string{"Inventory tracking tool"}},
		},
	}
}

func TestRunHighScoreEnhances(t *testing.T) {
	client := scriptedClient(8)
	runner, err := NewRunner(client, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	state, err := runner.Run(context.Background(), testResume(), types.JobDescription{JobTitle: "Backend Engineer"}, enhance.ModeSequential)
	require.NoError(t, err)

	require.NotNil(t, state.MappingResult)
	assert.Equal(t, 8, state.MappingResult.MatchScore)
	assert.Empty(t, state.FeedbackMessage)

	require.NotNil(t, state.EnhancedResume)
	assert.Equal(t, "Billing-focused backend engineer.", state.EnhancedResume.Summary)
	// Contact details pass through untouched.
	assert.Equal(t, testResume().PersonalInfo, state.EnhancedResume.PersonalInfo)

	require.NotNil(t, state.ReportSummary)
	assert.NotEmpty(t, *state.ReportSummary)

	assert.NotEmpty(t, state.TokenUsage["mapping"])
	assert.Len(t, state.SectionTimings, 7)
	assert.Empty(t, state.SectionErrors)
}

func TestRunLowScoreGivesFeedbackOnly(t *testing.T) {
	client := scriptedClient(4)
	runner, err := NewRunner(client, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	state, err := runner.Run(context.Background(), testResume(), types.JobDescription{}, enhance.ModeSequential)
	require.NoError(t, err)

	assert.Equal(t, "Consider gaining Kubernetes experience before applying.", state.FeedbackMessage)
	assert.Nil(t, state.EnhancedResume)
	assert.Nil(t, state.FullEnhancementOutput)
	assert.Nil(t, state.ReportSummary)
	// No section calls happened.
	assert.Equal(t, 1, client.CallCount("GenerateStructured"))
}

func TestRunSectionFailureFallsBackToOriginal(t *testing.T) {
	client := scriptedClient(9, enhance.SectionProjects)
	runner, err := NewRunner(client, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	original := testResume()
	state, err := runner.Run(context.Background(), original, types.JobDescription{}, enhance.ModeSequential)
	require.NoError(t, err)

	require.Contains(t, state.SectionErrors, enhance.SectionProjects)
	require.NotNil(t, state.EnhancedResume)
	// The failed section carries the original content.
	assert.Equal(t, original.Projects, state.EnhancedResume.Projects)
	// Other sections were still enhanced.
	assert.Equal(t, "Billing-focused backend engineer.", state.EnhancedResume.Summary)
}

func TestRunScoreBoundaryEnhances(t *testing.T) {
	// A score equal to the threshold takes the enhancement branch.
	client := scriptedClient(7)
	runner, err := NewRunner(client, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	state, err := runner.Run(context.Background(), testResume(), types.JobDescription{}, enhance.ModeSequential)
	require.NoError(t, err)
	assert.Empty(t, state.FeedbackMessage)
	assert.NotNil(t, state.EnhancedResume)
}

func TestRunnerRequiresClient(t *testing.T) {
	_, err := NewRunner(nil, Config{}, zap.NewNop())
	require.Error(t, err)

	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestRunStreamEmitsTerminalComplete(t *testing.T) {
	client := scriptedClient(8)
	client.StreamFn = func(_, user string, _ llm.ModelTier) ([]string, error) {
		return []string{sectionPayloads[sectionOf(user)]}, nil
	}

	runner, err := NewRunner(client, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	events := make(chan StreamEvent, 256)
	done := make(chan error, 1)
	go func() {
		defer close(events)
		done <- runner.RunStream(context.Background(), testResume(), types.JobDescription{}, events)
	}()

	var collected []StreamEvent
	for ev := range events {
		collected = append(collected, ev)
	}
	require.NoError(t, <-done)
	require.NotEmpty(t, collected)

	assert.Equal(t, EventMappingStart, collected[0].Type)
	assert.Equal(t, EventMappingComplete, collected[1].Type)
	assert.Equal(t, 8, collected[1].MatchScore)

	last := collected[len(collected)-1]
	assert.Equal(t, EventComplete, last.Type)
	require.NotNil(t, last.State)
	assert.NotNil(t, last.State.EnhancedResume)

	// Exactly one terminal event.
	terminals := 0
	for _, ev := range collected {
		if ev.Type == EventComplete {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)

	// Section indices are contiguous over the start events.
	next := 0
	for _, ev := range collected {
		if ev.Type == enhance.EventSectionStart {
			assert.Equal(t, next, ev.SectionIndex)
			next++
		}
	}
	assert.Equal(t, 7, next)
}

func TestRunStreamEmitsTerminalErrorOnMappingFailure(t *testing.T) {
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, _ string, _ llm.ModelTier) (llm.Response, error) {
			return llm.Response{}, &llm.TransientError{Message: "upstream down"}
		},
	}

	runner, err := NewRunner(client, fastConfig(), zap.NewNop())
	require.NoError(t, err)

	events := make(chan StreamEvent, 64)
	done := make(chan error, 1)
	go func() {
		defer close(events)
		done <- runner.RunStream(context.Background(), testResume(), types.JobDescription{}, events)
	}()

	var collected []StreamEvent
	for ev := range events {
		collected = append(collected, ev)
	}
	require.Error(t, <-done)
	require.NotEmpty(t, collected)

	last := collected[len(collected)-1]
	assert.Equal(t, enhance.EventError, last.Type)
	assert.NotEmpty(t, last.Message)
}
