package tui

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
)

func statusMark(status incident.StageStatus) string {
	switch status {
	case incident.StageCompleted:
		return successStyle.Render("✓")
	case incident.StageFailed:
		return failureStyle.Render("✗")
	case incident.StageSkipped:
		return skippedStyle.Render("-")
	default:
		return dimStyle.Render("?")
	}
}

func runStatusLine(status incident.RunStatus) string {
	switch status {
	case incident.RunCompleted:
		return successStyle.Render("Run completed")
	case incident.RunFailed:
		return failureStyle.Render("Run failed")
	case incident.RunAwaitingApproval:
		return runningStyle.Render("Run paused, awaiting approval")
	default:
		return dimStyle.Render("Run " + string(status))
	}
}

// RenderSummary renders a pipeline result as a styled report for the
// terminal.
func RenderSummary(result *incident.PipelineResult) string {
	if result == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %s", result.Incident.ID, result.Incident.Title)))
	b.WriteString("\n\n")

	for _, stage := range result.Stages {
		line := fmt.Sprintf("%s %s", statusMark(stage.Status), stageStyle.Render(stage.Stage))
		if duration := stage.Duration(); duration > 0 {
			line += dimStyle.Render(fmt.Sprintf(" (%s)", duration.Round(duration/100)))
		}
		b.WriteString(line)
		b.WriteString("\n")
		if stage.Summary != "" {
			b.WriteString("  " + dimStyle.Render(stage.Summary))
			b.WriteString("\n")
		}
		if stage.IsFailure() && stage.Error != "" {
			b.WriteString("  " + failureStyle.Render(stage.Error))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(runStatusLine(result.Status))
	b.WriteString("\n")
	return b.String()
}
