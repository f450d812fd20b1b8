package stages

import (
	"context"
	"strings"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/extract"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Designer turns investigation findings into a fix specification with
// tradeoffs and rejected alternatives.
type Designer struct {
	gen ports.Generator
}

// NewDesigner builds the design stage.
func NewDesigner(gen ports.Generator) *Designer {
	return &Designer{gen: gen}
}

// Name implements engine.Stage.
func (s *Designer) Name() string { return incident.StageDesign }

// ShouldSkip skips the stage unless an investigation completed; there is
// nothing to design a fix for without a root cause.
func (s *Designer) ShouldSkip(sctx *incident.StageContext) bool {
	inv, ok := sctx.Investigation()
	return !ok || !inv.IsCompleted()
}

type designData struct {
	Incident            incident.Incident
	InvestigationReport string
	RootCause           string
	AffectedFiles       string
}

// Execute implements engine.Stage.
func (s *Designer) Execute(ctx context.Context, sctx *incident.StageContext) (incident.StageResult, error) {
	inv, _ := sctx.Investigation()

	prompt, err := render(designPrompt, designData{
		Incident:            sctx.Incident,
		InvestigationReport: orFallback(inv.Details, inv.Summary),
		RootCause:           orFallback(inv.RootCause, "Unknown"),
		AffectedFiles:       orFallback(strings.Join(inv.AffectedCode, ", "), "Unknown"),
	})
	if err != nil {
		return incident.StageResult{}, err
	}

	response, err := s.gen.Complete(ctx, prompt)
	if err != nil {
		return incident.StageResult{}, incident.NewGeneratorError("design call failed", err)
	}

	fixSummary, _ := extract.Section(response, "Fix Summary")
	tradeoffs, _ := extract.Section(response, "Tradeoffs")
	alternatives, _ := extract.Section(response, "Alternatives Considered")

	return incident.StageResult{
		Summary:          orFallback(firstLine(fixSummary), "fix design complete"),
		Details:          response,
		FixSpecification: response,
		Tradeoffs:        extract.List(tradeoffs),
		Alternatives:     extract.List(alternatives),
	}, nil
}
