package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RunStartMsg:
		m.ensureRun(msg.ID)
		run := m.runs[msg.ID]
		run.status = statusRunning
		m.runs[msg.ID] = run
		return m, nil
	case RunDoneMsg:
		if msg.ID == "" {
			return m, nil
		}
		m.ensureRun(msg.ID)
		existing := m.runs[msg.ID]
		alreadyDone := existing.status == statusDone
		m.runs[msg.ID] = runState{status: statusDone, result: msg.Result, err: msg.Err}
		if !alreadyDone {
			m.completed++
			m.markFinishedIfComplete()
		}
		// A fatal error ends the whole run; remaining subsystems stay pending.
		if msg.Err != nil {
			m.finished = true
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
