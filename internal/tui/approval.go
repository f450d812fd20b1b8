// Package tui renders the interactive surfaces of the CLI: the between-stage
// approval prompt, the run spinner, and the final run summary.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
	"github.com/alexisbeaulieu97/coyote/internal/ports"
)

// approvalModel asks whether the run may proceed past a completed stage.
type approvalModel struct {
	stage   string
	result  incident.StageResult
	decided bool
	approve bool
}

func newApprovalModel(stage string, result incident.StageResult) approvalModel {
	return approvalModel{stage: stage, result: result}
}

// Init implements tea.Model.
func (m approvalModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m approvalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y", "enter":
		m.decided = true
		m.approve = true
		return m, tea.Quit
	case "n", "q", "esc", "ctrl+c":
		m.decided = true
		m.approve = false
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m approvalModel) View() string {
	if m.decided {
		return ""
	}

	var b strings.Builder
	b.WriteString(stageStyle.Render(fmt.Sprintf("Stage %s completed", m.stage)))
	b.WriteString("\n")
	if m.result.Summary != "" {
		b.WriteString(dimStyle.Render(m.result.Summary))
		b.WriteString("\n")
	}
	if duration := m.result.Duration(); duration > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("took %s", duration.Round(duration/100))))
		b.WriteString("\n")
	}
	b.WriteString(promptStyle.Render("Proceed to the next stage? [y/N] "))
	return b.String()
}

// Gate is the interactive approval collaborator. Each decision runs a small
// prompt program; declining, quitting, or a render failure all halt the run.
type Gate struct {
	input  io.Reader
	output io.Writer
}

var _ ports.ApprovalGate = (*Gate)(nil)

// NewGate builds an interactive gate reading from input and drawing to output.
// Nil values fall back to the terminal.
func NewGate(input io.Reader, output io.Writer) *Gate {
	return &Gate{input: input, output: output}
}

// Decide implements ports.ApprovalGate.
func (g *Gate) Decide(ctx context.Context, stage string, result incident.StageResult) bool {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if g.input != nil {
		opts = append(opts, tea.WithInput(g.input))
	}
	if g.output != nil {
		opts = append(opts, tea.WithOutput(g.output))
	}

	final, err := tea.NewProgram(newApprovalModel(stage, result), opts...).Run()
	if err != nil {
		return false
	}
	m, ok := final.(approvalModel)
	return ok && m.approve
}
