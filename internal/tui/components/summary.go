package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates run outcomes for summary rendering.
type SummaryData struct {
	Total          int
	Completed      int
	Satisfied      int
	Unsatisfied    int
	Indeterminate  int
	ActionsApplied int
	Errors         int
	Finished       bool
	Cancelled      bool
	Fatal          bool
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Subsystems: %d/%d completed", s.data.Completed, s.data.Total))
	}
	if s.data.Completed > 0 {
		lines = append(lines, fmt.Sprintf("Satisfied: %d  Not satisfied: %d  Indeterminate: %d",
			s.data.Satisfied, s.data.Unsatisfied, s.data.Indeterminate))
	}
	if s.data.ActionsApplied > 0 {
		lines = append(lines, fmt.Sprintf("Actions applied: %d", s.data.ActionsApplied))
	}
	if s.data.Errors > 0 {
		lines = append(lines, fmt.Sprintf("Errors: %d", s.data.Errors))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Run cancelled")
	case s.data.Fatal:
		lines = append(lines, "Run aborted")
	case s.data.Finished && s.data.Total > 0:
		if s.data.Satisfied == s.data.Completed && s.data.Errors == 0 {
			lines = append(lines, "All subsystems satisfied")
		} else {
			lines = append(lines, "Run finished with findings")
		}
	}

	return strings.Join(lines, "\n")
}
