package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/tui"
)

type stagePayload struct {
	Stage          string            `json:"stage"`
	Status         string            `json:"status"`
	Summary        string            `json:"summary,omitempty"`
	DurationMillis int64             `json:"duration_ms"`
	Error          string            `json:"error,omitempty"`
	RootCause      string            `json:"root_cause,omitempty"`
	AffectedCode   []string          `json:"affected_code,omitempty"`
	CodeChanges    map[string]string `json:"code_changes,omitempty"`
	CommitMessage  string            `json:"commit_message,omitempty"`
	TestsPassed    *bool             `json:"tests_passed,omitempty"`
	Recommendation string            `json:"recommendation,omitempty"`
	Category       string            `json:"category,omitempty"`
	Lessons        []string          `json:"lessons,omitempty"`
}

type resultPayload struct {
	IncidentID string         `json:"incident_id"`
	Title      string         `json:"title"`
	Status     string         `json:"status"`
	Successful bool           `json:"successful"`
	Stages     []stagePayload `json:"stages"`
}

func resultToPayload(result *incident.PipelineResult) resultPayload {
	payload := resultPayload{
		IncidentID: result.Incident.ID,
		Title:      result.Incident.Title,
		Status:     string(result.Status),
		Successful: result.Successful(),
	}
	for _, stage := range result.Stages {
		payload.Stages = append(payload.Stages, stagePayload{
			Stage:          stage.Stage,
			Status:         string(stage.Status),
			Summary:        stage.Summary,
			DurationMillis: stage.Duration().Milliseconds(),
			Error:          stage.Error,
			RootCause:      stage.RootCause,
			AffectedCode:   stage.AffectedCode,
			CodeChanges:    stage.CodeChanges,
			CommitMessage:  stage.CommitMessage,
			TestsPassed:    stage.TestsPassed,
			Recommendation: stage.Recommendation,
			Category:       stage.Category,
			Lessons:        stage.Lessons,
		})
	}
	return payload
}

func emitResult(w io.Writer, result *incident.PipelineResult, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resultToPayload(result))
	case "text":
		fmt.Fprint(w, tui.RenderSummary(result))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
