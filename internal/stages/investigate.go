package stages

import (
	"context"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/extract"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Investigator traces an incident to its root cause. It is the workflow
// entry stage and never skips.
type Investigator struct {
	gen ports.Generator
}

// NewInvestigator builds the investigation stage.
func NewInvestigator(gen ports.Generator) *Investigator {
	return &Investigator{gen: gen}
}

// Name implements engine.Stage.
func (s *Investigator) Name() string { return incident.StageInvestigate }

// ShouldSkip implements engine.Stage.
func (s *Investigator) ShouldSkip(*incident.StageContext) bool { return false }

type investigateData struct {
	Incident       incident.Incident
	DetectedAt     string
	ErrorInfo      string
	StackTrace     string
	RelatedChanges []string
	Observability  string
}

// Execute implements engine.Stage.
func (s *Investigator) Execute(ctx context.Context, sctx *incident.StageContext) (incident.StageResult, error) {
	inc := sctx.Incident

	detected := inc.CreatedAt
	if !inc.DetectedAt.IsZero() {
		detected = inc.DetectedAt
	}

	prompt, err := render(investigatePrompt, investigateData{
		Incident:       inc,
		DetectedAt:     detected.Format(time.RFC3339),
		ErrorInfo:      orFallback(inc.ErrorMessage, inc.Description),
		StackTrace:     orFallback(inc.StackTrace, "No stack trace available"),
		RelatedChanges: inc.RelatedChanges,
		Observability:  sctx.Metadata["observability"],
	})
	if err != nil {
		return incident.StageResult{}, err
	}

	response, err := s.gen.Complete(ctx, prompt)
	if err != nil {
		return incident.StageResult{}, incident.NewGeneratorError("investigation call failed", err)
	}

	rootCause, _ := extract.Section(response, "Root Cause")

	summary := "investigation complete"
	if rootCause != "" {
		summary = "investigation complete: " + truncate(firstLine(rootCause), 100)
	}

	return incident.StageResult{
		Summary:           summary,
		Details:           response,
		RootCause:         rootCause,
		AffectedCode:      extract.KeyedFiles(response),
		OriginatingChange: originatingChange(response),
	}, nil
}

// originatingChange pulls the PR or commit reference out of the report. The
// value is whatever follows the last colon, skipping template placeholders
// the generator may have echoed back.
func originatingChange(text string) string {
	for _, key := range []string{"PR:", "Commit:"} {
		for _, line := range strings.Split(text, "\n") {
			if !strings.Contains(line, key) {
				continue
			}
			idx := strings.LastIndexByte(line, ':')
			value := strings.TrimSpace(line[idx+1:])
			if value != "" && !strings.HasPrefix(value, "[") {
				return value
			}
		}
	}
	return ""
}
