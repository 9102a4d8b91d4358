package subsystem

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/lockstep/internal/logger"
)

// ErrNotFound is returned when the requested subsystem type is not registered.
type ErrNotFound struct {
	Type string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("subsystem type '%s' not found in registry\nHint: ensure the subsystem is registered before usage", e.Type)
}

// Registry holds the known subsystem implementations keyed by type.
type Registry struct {
	mu         sync.RWMutex
	subsystems map[string]Subsystem
	logger     *logger.Logger
}

// NewRegistry creates an empty subsystem registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		subsystems: make(map[string]Subsystem),
		logger:     log,
	}
}

// Register adds a subsystem implementation. Registering the same type twice
// is an error.
func (r *Registry) Register(s Subsystem) error {
	if s == nil {
		return fmt.Errorf("subsystem is nil")
	}

	meta := s.Metadata()
	if meta.Type == "" {
		return fmt.Errorf("subsystem metadata has empty type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subsystems[meta.Type]; exists {
		return fmt.Errorf("subsystem type %q already registered", meta.Type)
	}

	r.subsystems[meta.Type] = s
	r.logger.Debug("subsystem registered", logger.F("type", meta.Type))
	return nil
}

// Get retrieves a subsystem implementation by type.
func (r *Registry) Get(typeName string) (Subsystem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subsystems[typeName]
	if !ok {
		return nil, ErrNotFound{Type: typeName}
	}
	return s, nil
}

// List returns the metadata of all registered subsystems sorted by type.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.subsystems))
	for _, s := range r.subsystems {
		out = append(out, s.Metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
