package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	"github.com/AliTechM/ai-profile-personalization-engine/internal/pipeline"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

var sectionPayloads = map[enhance.Section]string{
	enhance.SectionSummary:        `{"enhanced": "Billing-focused backend engineer.", "reasons": [{"field_or_location": "summary", "reason": "aligned with the role"}]}`,
	enhance.SectionExperiences:    `{"enhanced": [{"role_title": "Backend Engineer", "company_name": "Acme", "start_date": "2020-01", "description": ["Shipped the billing API"]}], "reasons": []}`,
	enhance.SectionEducations:     `{"enhanced": [{"degree": "BSc", "major": "CS", "university_name": "State University", "start_date": "2015-09"}], "reasons": []}`,
	enhance.SectionSkills:         `{"enhanced": [{"skill_name": "Go", "skill_type": "technical"}], "reasons": []}`,
	enhance.SectionCertifications: `{"enhanced": [{"certification_name": "CKA", "issuing_organization": "CNCF"}], "reasons": []}`,
	enhance.SectionLanguages:      `{"enhanced": [{"language": "English", "proficiency_level": "C1"}], "reasons": []}`,
	enhance.SectionProjects:       `{"enhanced": [{"project_name": "Tracker", "description": ["Inventory tool"]}], "reasons": []}`,
}

func sectionOf(user string) enhance.Section {
	for _, section := range enhance.Sections {
		if strings.Contains(user, "'"+string(section)+"'") {
			return section
		}
	}
	return ""
}

func fakeClient(score int) *llmtest.Client {
	return &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, user string, _ llm.ModelTier) (llm.Response, error) {
			if section := sectionOf(user); section != "" {
				return llm.Response{Text: sectionPayloads[section]}, nil
			}
			return llm.Response{Text: fmt.Sprintf(`{
				"matched_skills": ["Go"],
				"matched_requirements": [],
				"gaps": ["Kubernetes"],
				"match_score": %d
			}`, score)}, nil
		},
		TextFn: func(_, _ string, _ llm.ModelTier) (llm.Response, error) {
			return llm.Response{Text: "Summary of changes."}, nil
		},
		StreamFn: func(_, user string, _ llm.ModelTier) ([]string, error) {
			return []string{sectionPayloads[sectionOf(user)]}, nil
		},
	}
}

func newTestServer(t *testing.T, client llm.Client) *Server {
	t.Helper()
	srv, err := New(Config{
		Port: 8080,
		Pipeline: pipeline.Config{
			ScoreThreshold:  7,
			SectionAttempts: 1,
			Backoff:         []time.Duration{time.Millisecond},
		},
	}, client, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func enhanceBody(t *testing.T, mode string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"resume": types.Resume{
			PersonalInfo: types.PersonalInfo{FullName: "Dana Smith"},
			Summary:      "Backend engineer.",
		},
		"job_description": types.JobDescription{JobTitle: "Backend Engineer"},
		"mode":            mode,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{Port: 8080}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, fakeClient(8))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestEnhanceEndpoint(t *testing.T) {
	srv := newTestServer(t, fakeClient(8))

	req := httptest.NewRequest(http.MethodPost, "/v1/enhance", enhanceBody(t, "sequential"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var state pipeline.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.NotNil(t, state.EnhancedResume)
	assert.Equal(t, "Billing-focused backend engineer.", state.EnhancedResume.Summary)
	assert.Equal(t, "Dana Smith", state.EnhancedResume.PersonalInfo.FullName)
}

func TestEnhanceEndpointLowScoreReturnsFeedback(t *testing.T) {
	srv := newTestServer(t, fakeClient(3))

	req := httptest.NewRequest(http.MethodPost, "/v1/enhance", enhanceBody(t, "sequential"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var state pipeline.WorkflowState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Nil(t, state.EnhancedResume)
	assert.NotEmpty(t, state.FeedbackMessage)
}

func TestEnhanceEndpointRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, fakeClient(8))

	req := httptest.NewRequest(http.MethodPost, "/v1/enhance", strings.NewReader(`{"mode": "sequential"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestEnhanceEndpointRejectsUnknownMode(t *testing.T) {
	srv := newTestServer(t, fakeClient(8))

	req := httptest.NewRequest(http.MethodPost, "/v1/enhance", enhanceBody(t, "parallel"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnhanceStreamEndpoint(t *testing.T) {
	srv := newTestServer(t, fakeClient(8))

	req := httptest.NewRequest(http.MethodPost, "/v1/enhance/stream", enhanceBody(t, "streaming"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	var eventNames []string
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			eventNames = append(eventNames, strings.TrimPrefix(line, "event: "))
		}
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, eventNames)

	assert.Equal(t, "mapping_start", eventNames[0])
	assert.Equal(t, "mapping_complete", eventNames[1])
	assert.Equal(t, "complete", eventNames[len(eventNames)-1])

	starts := 0
	for _, name := range eventNames {
		if name == "section_start" {
			starts++
		}
	}
	assert.Equal(t, 7, starts)
}

func TestParseResumeEndpoint(t *testing.T) {
	client := fakeClient(8)
	client.StructuredFn = func(_ *genai.Schema, _, _ string, _ llm.ModelTier) (llm.Response, error) {
		return llm.Response{Text: `{
			"personal_info": {"full_name": "Dana Smith", "phone_number": "", "email_address": "dana@example.com"},
			"summary": "Backend engineer.",
			"educations": [], "experiences": [], "skills": [],
			"certifications": [], "languages": [], "projects": []
		}`}, nil
	}
	srv := newTestServer(t, client)

	body := `{"text": "Dana Smith, backend engineer at Acme"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/parse/resume", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resume types.Resume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resume))
	assert.Equal(t, "Dana Smith", resume.PersonalInfo.FullName)
}

func TestExportHTMLEndpoint(t *testing.T) {
	srv := newTestServer(t, fakeClient(8))

	body, err := json.Marshal(map[string]any{
		"resume": types.Resume{PersonalInfo: types.PersonalInfo{FullName: "Dana Smith"}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/export/html", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Dana Smith")
}

func TestUpstreamFailureMapsToServiceUnavailable(t *testing.T) {
	client := &llmtest.Client{
		StructuredFn: func(_ *genai.Schema, _, _ string, _ llm.ModelTier) (llm.Response, error) {
			return llm.Response{}, &llm.TransientError{Message: "upstream overloaded"}
		},
	}
	srv := newTestServer(t, client)

	req := httptest.NewRequest(http.MethodPost, "/v1/enhance", enhanceBody(t, "sequential"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
