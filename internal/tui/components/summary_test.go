package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSummaryView(t *testing.T) {
	t.Parallel()

	t.Run("renders empty summary", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{}).View()
		require.Equal(t, "", view)
	})

	t.Run("renders run progress", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 3, Completed: 1}).View()
		require.Contains(t, view, "Subsystems: 1/3 completed")
	})

	t.Run("renders outcome counts", func(t *testing.T) {
		t.Parallel()
		data := SummaryData{
			Total:         3,
			Completed:     3,
			Satisfied:     1,
			Unsatisfied:   1,
			Indeterminate: 1,
			Finished:      true,
		}
		view := NewSummary(data).View()
		require.Contains(t, view, "Satisfied: 1  Not satisfied: 1  Indeterminate: 1")
		require.Contains(t, view, "Run finished with findings")
	})

	t.Run("renders all satisfied", func(t *testing.T) {
		t.Parallel()
		data := SummaryData{Total: 2, Completed: 2, Satisfied: 2, Finished: true}
		view := NewSummary(data).View()
		require.Contains(t, view, "All subsystems satisfied")
	})

	t.Run("renders actions and errors", func(t *testing.T) {
		t.Parallel()
		data := SummaryData{Total: 1, Completed: 1, Unsatisfied: 1, ActionsApplied: 2, Errors: 1, Finished: true}
		view := NewSummary(data).View()
		require.Contains(t, view, "Actions applied: 2")
		require.Contains(t, view, "Errors: 1")
	})

	t.Run("renders cancelled run", func(t *testing.T) {
		t.Parallel()
		view := NewSummary(SummaryData{Total: 3, Completed: 1, Cancelled: true}).View()
		require.Contains(t, view, "Run cancelled")
	})

	t.Run("fatal abort wins over completion message", func(t *testing.T) {
		t.Parallel()
		data := SummaryData{Total: 2, Completed: 2, Satisfied: 2, Finished: true, Fatal: true}
		view := NewSummary(data).View()
		require.Contains(t, view, "Run aborted")
		require.NotContains(t, view, "All subsystems satisfied")
	})
}
