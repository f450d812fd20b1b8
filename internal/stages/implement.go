package stages

import (
	"context"
	"strings"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/extract"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Implementer produces concrete code changes for a designed fix.
type Implementer struct {
	gen ports.Generator
}

// NewImplementer builds the implementation stage.
func NewImplementer(gen ports.Generator) *Implementer {
	return &Implementer{gen: gen}
}

// Name implements engine.Stage.
func (s *Implementer) Name() string { return incident.StageImplement }

// ShouldSkip skips the stage unless a design completed.
func (s *Implementer) ShouldSkip(sctx *incident.StageContext) bool {
	design, ok := sctx.Design()
	return !ok || !design.IsCompleted()
}

type implementData struct {
	Incident      incident.Incident
	FixDesign     string
	RootCause     string
	AffectedFiles string
}

// Execute implements engine.Stage.
func (s *Implementer) Execute(ctx context.Context, sctx *incident.StageContext) (incident.StageResult, error) {
	design, _ := sctx.Design()
	inv, _ := sctx.Investigation()

	prompt, err := render(implementPrompt, implementData{
		Incident:      sctx.Incident,
		FixDesign:     orFallback(design.FixSpecification, design.Details),
		RootCause:     orFallback(inv.RootCause, "Unknown"),
		AffectedFiles: orFallback(strings.Join(inv.AffectedCode, ", "), "Unknown"),
	})
	if err != nil {
		return incident.StageResult{}, err
	}

	response, err := s.gen.Complete(ctx, prompt)
	if err != nil {
		return incident.StageResult{}, incident.NewGeneratorError("implementation call failed", err)
	}

	summary, _ := extract.Section(response, "Summary")
	commitMessage, _ := extract.CommitMessage(response)

	return incident.StageResult{
		Summary:       orFallback(firstLine(summary), "implementation complete"),
		Details:       response,
		CodeChanges:   extract.CodeBlocks(response),
		CommitMessage: commitMessage,
	}, nil
}
