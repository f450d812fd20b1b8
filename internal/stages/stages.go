// Package stages implements the built-in incident resolution workflow:
// investigate, design, implement, test, and learn. Each stage calls the
// generator with a structured prompt and reads the narrative back through the
// extract grammar; a response missing expected sections still completes, just
// with the corresponding fields empty.
package stages

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/engine"
	"github.com/alexisbeaulieu97/coyote/internal/knowledge"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// Dependencies carries the collaborators the built-in stages need. Generator
// is required; the rest default to no-ops when nil.
type Dependencies struct {
	Generator ports.Generator
	Store     *knowledge.Store
	Insights  ports.InsightSink
	Logger    ports.Logger
}

// Full returns the complete five-stage resolution workflow.
func Full(deps Dependencies) []engine.Stage {
	return []engine.Stage{
		NewInvestigator(deps.Generator),
		NewDesigner(deps.Generator),
		NewImplementer(deps.Generator),
		NewValidator(deps.Generator),
		NewLearner(deps.Generator, deps.Store, deps.Insights, deps.Logger),
	}
}

// InvestigationOnly returns a workflow that stops after root cause analysis.
func InvestigationOnly(deps Dependencies) []engine.Stage {
	return []engine.Stage{NewInvestigator(deps.Generator)}
}

// DesignAndImplement returns the workflow that stops once a fix exists:
// investigation, then design and implementation, with no validation or
// knowledge capture. Investigation is included because the design stage skips
// without a completed root cause analysis.
func DesignAndImplement(deps Dependencies) []engine.Stage {
	return []engine.Stage{
		NewInvestigator(deps.Generator),
		NewDesigner(deps.Generator),
		NewImplementer(deps.Generator),
	}
}

// ByName maps stage names to constructors so a resume can rebuild exactly the
// remaining stages of an interrupted run.
func ByName(names []string, deps Dependencies) ([]engine.Stage, error) {
	var out []engine.Stage
	for _, name := range names {
		switch name {
		case incident.StageInvestigate:
			out = append(out, NewInvestigator(deps.Generator))
		case incident.StageDesign:
			out = append(out, NewDesigner(deps.Generator))
		case incident.StageImplement:
			out = append(out, NewImplementer(deps.Generator))
		case incident.StageTest:
			out = append(out, NewValidator(deps.Generator))
		case incident.StageLearn:
			out = append(out, NewLearner(deps.Generator, deps.Store, deps.Insights, deps.Logger))
		default:
			return nil, fmt.Errorf("unknown stage %q", name)
		}
	}
	return out, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// truncate caps s at n runes for use in one-line summaries.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// firstLine returns the first non-empty line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func orFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
