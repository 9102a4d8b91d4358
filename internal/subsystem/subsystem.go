package subsystem

import (
	"github.com/alexisbeaulieu97/lockstep/internal/backup"
	"github.com/alexisbeaulieu97/lockstep/internal/config"
	"github.com/alexisbeaulieu97/lockstep/internal/execx"
	"github.com/alexisbeaulieu97/lockstep/internal/logger"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/reconcile"
)

// Metadata describes a subsystem implementation for discovery and listing.
type Metadata struct {
	Type        string
	Description string
}

// Deps carries the shared capabilities a subsystem needs to build its plan.
type Deps struct {
	Runner  execx.Runner
	Backups *backup.Store
	Logger  *logger.Logger

	// AuthorizeDestructive preauthorizes destructive actions for unattended
	// runs. It comes from an explicit caller flag; the engine itself never
	// decides it.
	AuthorizeDestructive bool
}

// Plan is everything the engine needs to reconcile one subsystem: the
// hardened target with its forward actions, and the restore target with its
// separately declared inverse actions. Forward and backout are two
// independently validated target/action pairs that happen to share fact
// names; backout is never derived by reversing the forward list.
type Plan struct {
	Harden         model.Target
	HardenActions  []model.Action
	Restore        model.Target
	RestoreActions []model.Action
	Collaborator   reconcile.Collaborator
}

// Select returns the target and action set for the given run mode.
func (p *Plan) Select(mode model.RunMode) (model.Target, []model.Action) {
	if mode == model.Backout {
		return p.Restore, p.RestoreActions
	}
	return p.Harden, p.HardenActions
}

// Subsystem builds a reconciliation plan from its profile configuration.
// Implementations own all subsystem-specific knowledge: which facts define
// "hardened", which commands observe them, and which actions correct them.
type Subsystem interface {
	Metadata() Metadata
	Build(cfg *config.Subsystem, deps Deps) (*Plan, error)
}
