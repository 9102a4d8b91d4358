package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("lockstep • %s (%s)", m.title(), m.mode))
	sections = append(sections, title)

	progress := components.NewProgress(m.total).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := m.entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Subsystems"))
		sections = append(sections, renderRunEntries(entries))
	}

	summary := components.NewSummary(m.summaryData()).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) entries() []components.RunEntry {
	entries := make([]components.RunEntry, 0, len(m.order))
	for _, id := range m.order {
		run := m.runs[id]
		entries = append(entries, components.RunEntry{
			ID:      id,
			Running: run.status == statusRunning,
			Done:    run.status == statusDone,
			Result:  run.result,
			Err:     run.err,
		})
	}
	return components.NewRunList(entries).Entries()
}

func (m Model) summaryData() components.SummaryData {
	data := components.SummaryData{
		Total:     m.total,
		Completed: m.completed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
	}
	for _, id := range m.order {
		run := m.runs[id]
		if run.status != statusDone {
			continue
		}
		if run.err != nil {
			data.Fatal = true
			data.Errors++
		}
		if run.result == nil {
			continue
		}
		switch run.result.SatisfiedAfter {
		case model.Satisfied:
			data.Satisfied++
		case model.NotSatisfied:
			data.Unsatisfied++
		default:
			data.Indeterminate++
		}
		data.ActionsApplied += len(run.result.ActionsApplied)
		data.Errors += len(run.result.Errors)
	}
	return data
}

func renderRunEntries(entries []components.RunEntry) string {
	var lines []string
	for _, entry := range entries {
		line := fmt.Sprintf(" %s %s", entryIcon(entry), entry.ID)
		if detail := entryDetail(entry); detail != "" {
			line = fmt.Sprintf("%s: %s", line, detail)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func entryIcon(entry components.RunEntry) string {
	switch {
	case entry.Running:
		return runningStyle.Render("⏳")
	case !entry.Done:
		return pendingStyle.Render("…")
	case entry.Err != nil:
		return failureStyle.Render("✗")
	case entry.Result == nil:
		return indeterminateStyle.Render("?")
	}
	switch entry.Result.SatisfiedAfter {
	case model.Satisfied:
		return satisfiedStyle.Render("✓")
	case model.NotSatisfied:
		return failureStyle.Render("✗")
	default:
		return indeterminateStyle.Render("?")
	}
}

func entryDetail(entry components.RunEntry) string {
	if !entry.Done {
		return ""
	}
	if entry.Err != nil {
		return entry.Err.Error()
	}
	if entry.Result == nil {
		return ""
	}
	var parts []string
	parts = append(parts, string(entry.Result.SatisfiedAfter))
	if n := len(entry.Result.ActionsApplied); n > 0 {
		parts = append(parts, fmt.Sprintf("%d action(s) applied", n))
	}
	if n := len(entry.Result.ActionsDeclined); n > 0 {
		parts = append(parts, fmt.Sprintf("%d declined", n))
	}
	if n := len(entry.Result.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", n))
	}
	return strings.Join(parts, ", ")
}

func (m Model) title() string {
	if strings.TrimSpace(m.profileName) != "" {
		return m.profileName
	}
	return "Run"
}
