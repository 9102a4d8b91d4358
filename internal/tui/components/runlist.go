package components

import (
	"github.com/alexisbeaulieu97/lockstep/internal/model"
)

// RunEntry represents a single subsystem run for rendering.
type RunEntry struct {
	ID      string
	Running bool
	Done    bool
	Result  *model.RunResult
	Err     error
}

// RunList renders subsystem runs with their current outcome.
type RunList struct {
	entries []RunEntry
}

// NewRunList constructs a run list component from ordered entries.
func NewRunList(entries []RunEntry) RunList {
	return RunList{entries: entries}
}

// Entries returns the ordered run entries.
func (l RunList) Entries() []RunEntry {
	clone := make([]RunEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}
