package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/coyote/internal/domain/incident"
)

type runDoneMsg struct {
	result *incident.PipelineResult
}

// runnerModel shows a spinner while the pipeline executes in the background.
type runnerModel struct {
	spin   spinner.Model
	label  string
	run    func() *incident.PipelineResult
	result *incident.PipelineResult
}

func newRunnerModel(label string, run func() *incident.PipelineResult) runnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle
	return runnerModel{spin: s, label: label, run: run}
}

// Init implements tea.Model.
func (m runnerModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg { return runDoneMsg{result: m.run()} },
	)
}

// Update implements tea.Model.
func (m runnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runDoneMsg:
		m.result = msg.result
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m runnerModel) View() string {
	if m.result != nil {
		return ""
	}
	return m.spin.View() + " " + m.label
}

// RunWithSpinner executes run in the background while drawing a spinner, and
// returns the pipeline result. A nil result means the program was interrupted
// before the run finished.
func RunWithSpinner(ctx context.Context, label string, run func() *incident.PipelineResult) (*incident.PipelineResult, error) {
	final, err := tea.NewProgram(newRunnerModel(label, run), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(runnerModel)
	if !ok {
		return nil, nil
	}
	return m.result, nil
}
