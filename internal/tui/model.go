package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/lockstep/internal/model"
)

// RunStartMsg indicates a subsystem run has started.
type RunStartMsg struct {
	ID   string
	Time time.Time
}

// RunDoneMsg reports the outcome of a subsystem run. Err carries a fatal
// run error; non-fatal errors travel inside the result.
type RunDoneMsg struct {
	ID     string
	Result *model.RunResult
	Err    error
}

type runStatus int

const (
	statusPending runStatus = iota
	statusRunning
	statusDone
)

type runState struct {
	status runStatus
	result *model.RunResult
	err    error
}

// Model contains the Bubbletea state for lockstep's run TUI. It tracks one
// entry per subsystem declared in the profile, in declaration order.
type Model struct {
	profileName string
	mode        model.RunMode
	runs        map[string]runState
	order       []string
	total       int
	completed   int
	finished    bool
	cancelled   bool
}

// NewModel constructs a TUI model for a run over the given subsystem IDs.
func NewModel(profileName string, mode model.RunMode, ids []string) Model {
	m := Model{
		profileName: profileName,
		mode:        mode,
		runs:        make(map[string]runState),
	}
	for _, id := range ids {
		if _, exists := m.runs[id]; exists {
			continue
		}
		m.runs[id] = runState{status: statusPending}
		m.order = append(m.order, id)
		m.total++
	}
	return m
}

// Init implements tea.Model. Rendering is driven entirely by run messages
// sent from the profile loop, so there is no startup command.
func (m Model) Init() tea.Cmd {
	return nil
}

// TotalRuns returns the number of subsystem runs tracked by the model.
func (m Model) TotalRuns() int {
	return m.total
}

// CompletedRuns returns the number of finished subsystem runs.
func (m Model) CompletedRuns() int {
	return m.completed
}

// IsFinished reports whether all subsystem runs have completed.
func (m Model) IsFinished() bool {
	return m.finished
}

func (m *Model) ensureRun(id string) {
	if id == "" {
		return
	}
	if _, exists := m.runs[id]; !exists {
		m.runs[id] = runState{status: statusPending}
		m.order = append(m.order, id)
		m.total++
	}
}

func (m *Model) markFinishedIfComplete() {
	if m.total > 0 && m.completed >= m.total {
		m.finished = true
	}
}
