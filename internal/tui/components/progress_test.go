package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressView(t *testing.T) {
	t.Parallel()

	t.Run("renders with zero total", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(0).View(0)
		require.Contains(t, view, "0/0")
	})

	t.Run("renders with partial completion", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(3).View(1)
		require.Contains(t, view, "1/3")
	})

	t.Run("renders with full completion", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(3).View(3)
		require.Contains(t, view, "3/3")
	})

	t.Run("caps the bar beyond total", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(3).View(5)
		require.Contains(t, view, "5/3")
	})

	t.Run("view contains both label and bar", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(3).View(2)
		require.True(t, len(view) > len("2/3"))
	})
}
