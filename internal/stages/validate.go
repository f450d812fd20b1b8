package stages

import (
	"context"
	"strings"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/extract"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Validator reviews an implementation against the design, checks for
// regressions, and records a pass/fail verdict.
type Validator struct {
	gen ports.Generator
}

// NewValidator builds the validation stage.
func NewValidator(gen ports.Generator) *Validator {
	return &Validator{gen: gen}
}

// Name implements engine.Stage.
func (s *Validator) Name() string { return incident.StageTest }

// ShouldSkip skips the stage unless an implementation completed.
func (s *Validator) ShouldSkip(sctx *incident.StageContext) bool {
	impl, ok := sctx.Implementation()
	return !ok || !impl.IsCompleted()
}

type validateData struct {
	Incident       incident.Incident
	Implementation string
	RootCause      string
	FixDesign      string
}

// Execute implements engine.Stage.
func (s *Validator) Execute(ctx context.Context, sctx *incident.StageContext) (incident.StageResult, error) {
	impl, _ := sctx.Implementation()
	inv, _ := sctx.Investigation()
	design, _ := sctx.Design()

	prompt, err := render(validatePrompt, validateData{
		Incident:       sctx.Incident,
		Implementation: impl.Details,
		RootCause:      orFallback(inv.RootCause, "Unknown"),
		FixDesign:      orFallback(design.FixSpecification, "No design available"),
	})
	if err != nil {
		return incident.StageResult{}, err
	}

	response, err := s.gen.Complete(ctx, prompt)
	if err != nil {
		return incident.StageResult{}, incident.NewGeneratorError("validation call failed", err)
	}

	passed := verdictPassed(response)
	recommendation := extractRecommendation(response)
	regression, _ := extract.Section(response, "Regression Analysis")

	summary := "validation complete"
	if recommendation != "" {
		summary = "validation: " + recommendation
	}

	return incident.StageResult{
		Summary:        summary,
		Details:        response,
		TestsPassed:    &passed,
		Recommendation: recommendation,
		RegressionRisk: regression,
	}, nil
}

// verdictPassed interprets the free-text verdict. An ambiguous report counts
// as passed; the recommendation string preserves the nuance for humans.
func verdictPassed(response string) bool {
	lower := strings.ToLower(response)
	if strings.Contains(lower, "approve") && !strings.Contains(lower, "reject") {
		return true
	}
	if strings.Contains(lower, "[pass]") {
		return true
	}
	if strings.Contains(lower, "request changes") || strings.Contains(lower, "reject") {
		return false
	}
	return true
}

func extractRecommendation(response string) string {
	for _, line := range strings.Split(response, "\n") {
		upper := strings.ToUpper(line)
		switch {
		case strings.Contains(upper, "REQUEST CHANGES"):
			return "REQUEST CHANGES"
		case strings.Contains(upper, "APPROVE"):
			return "APPROVE"
		case strings.Contains(upper, "REJECT"):
			return "REJECT"
		}
	}
	return ""
}
