// Package pipeline runs the end-to-end personalization workflow: score the
// resume against the job, route on the score, enhance or give feedback,
// validate and merge, then report. State collected along the way is returned
// whole so callers can inspect every stage.
package pipeline

import (
	"github.com/AliTechM/ai-profile-personalization-engine/internal/enhance"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
	"github.com/AliTechM/ai-profile-personalization-engine/internal/types"
)

// WorkflowState is the accumulated output of one pipeline run. Fields fill
// in stage by stage; a field left zero means its stage did not run. Exactly
// one of EnhancedResume or FeedbackMessage is populated on success.
type WorkflowState struct {
	RunID string       `json:"run_id"`
	Mode  enhance.Mode `json:"mode"`

	Resume         types.Resume         `json:"resume"`
	JobDescription types.JobDescription `json:"job_description"`

	MappingResult *types.MappingResult `json:"mapping_result,omitempty"`

	FullEnhancementOutput *types.FullEnhancementOutput `json:"full_enhancement_output,omitempty"`
	EnhancedResume        *types.Resume                `json:"enhanced_resume,omitempty"`
	ReportSummary         *string                      `json:"report_summary,omitempty"`
	FeedbackMessage       string                       `json:"feedback_message,omitempty"`

	ProgressEvents []enhance.Event             `json:"progress_events,omitempty"`
	SectionTimings map[enhance.Section]float64 `json:"section_timings,omitempty"`
	SectionErrors  map[enhance.Section]string  `json:"section_errors,omitempty"`
	TokenUsage     map[string]llm.Usage        `json:"token_usage,omitempty"`
}

// StateError reports an input that violates the workflow contract before
// any model call is made.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}
