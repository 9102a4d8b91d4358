package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/lockstep/internal/logger"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	lockerrors "github.com/alexisbeaulieu97/lockstep/pkg/errors"
)

// Collaborator is the reconciler's only boundary to the live system. One
// implementation exists per subsystem; all side effects flow through it.
type Collaborator interface {
	// Read queries the current value of a named fact. Reads may shell out to
	// privileged tools and are treated as synchronous bounded operations.
	Read(ctx context.Context, factName string) (string, error)

	// Write performs one corrective action. It must be safe to invoke when
	// the system is already in the target state.
	Write(ctx context.Context, action model.Action) error
}

// ConfigChecker is an optional collaborator capability: a pre-activation
// sanity check for written configuration (maps to "validate config before
// reload"). The reconciler detects it via type assertion, the same way the
// plugin registry detects optional initialisers.
type ConfigChecker interface {
	Validate(ctx context.Context) error
}

// InteractionFn answers a yes/no question synchronously. The reconciler calls
// it only in interactive apply mode; a nil function declines everything.
type InteractionFn func(prompt string) (bool, error)

// Reconciler drives the observe, judge, apply, re-verify cycle for one
// subsystem. It holds no state between runs and never mutates the target or
// action set it is given.
type Reconciler struct {
	logger *logger.Logger
}

// New creates a reconciler that logs through the supplied logger.
func New(log *logger.Logger) *Reconciler {
	return &Reconciler{logger: log}
}

// Run reconciles the system against the target using the supplied action set.
// Non-fatal failures accumulate in the result; a non-nil error means the run
// aborted (missing prerequisite or failed config check) and the result holds
// whatever was recorded before the abort.
func (r *Reconciler) Run(ctx context.Context, target model.Target, actions []model.Action, collab Collaborator, mode model.RunMode, interact InteractionFn) (*model.RunResult, error) {
	result := &model.RunResult{Target: target.Name, Mode: mode}

	result.Before = r.observe(ctx, target, collab, result)
	result.SatisfiedBefore = judge(result.Before)

	apply := r.shouldApply(result, mode, interact)
	force := apply && mode == model.Apply && result.SatisfiedBefore == model.Satisfied

	if apply {
		selected := selectActions(actions, result.Before, mode, force)
		if err := r.applyActions(ctx, target, selected, collab, mode, interact, result); err != nil {
			return result, err
		}
	}

	// External state may have drifted between observe and judge, so the exit
	// observation is authoritative even when nothing was applied.
	result.After = r.observe(ctx, target, collab, result)
	result.SatisfiedAfter = judge(result.After)

	r.logger.Debug("run finished",
		logger.F("target", target.Name),
		logger.F("mode", mode.String()),
		logger.F("before", string(result.SatisfiedBefore)),
		logger.F("after", string(result.SatisfiedAfter)),
	)

	return result, nil
}

// shouldApply decides whether the run proceeds to action selection.
func (r *Reconciler) shouldApply(result *model.RunResult, mode model.RunMode, interact InteractionFn) bool {
	if mode == model.CheckOnly {
		return false
	}
	if mode == model.Backout {
		// Backout selects its inverse action set regardless of current
		// satisfaction; the actions themselves are idempotent.
		return true
	}
	if result.SatisfiedBefore != model.Satisfied {
		return true
	}

	// Already satisfied: pure idempotence in unattended mode, an explicit
	// question in interactive mode.
	if mode != model.Apply || interact == nil {
		return false
	}
	yes, err := interact(fmt.Sprintf("%s is already satisfied; reapply anyway?", result.Target))
	if err != nil {
		result.Errors = append(result.Errors, err)
		return false
	}
	return yes
}

// observe reads every fact of the target in declaration order. Failed reads
// are recorded as errors and mark the fact indeterminate; they never abort
// the run, because a missing diagnostic must not block hardening.
func (r *Reconciler) observe(ctx context.Context, target model.Target, collab Collaborator, result *model.RunResult) []model.FactReport {
	reports := make([]model.FactReport, 0, len(target.Facts))
	for _, fact := range target.Facts {
		report := model.FactReport{Name: fact.Name, Desired: fact.Desired}

		observed, err := collab.Read(ctx, fact.Name)
		if err != nil {
			obsErr := lockerrors.NewObservationError(fact.Name, err)
			report.Status = model.FactIndeterminate
			report.Err = obsErr
			result.Errors = append(result.Errors, obsErr)
			r.logger.Warn("fact could not be observed", logger.F("fact", fact.Name))
		} else {
			report.Observed = observed
			if fact.Satisfied(observed) {
				report.Status = model.FactSatisfied
			} else {
				report.Status = model.FactUnsatisfied
			}
		}

		reports = append(reports, report)
	}
	return reports
}

// judge computes target satisfaction over the known facts. A target with no
// observable fact at all is indeterminate, surfaced distinctly from "not
// satisfied".
func judge(reports []model.FactReport) model.Satisfaction {
	known := 0
	for _, report := range reports {
		switch report.Status {
		case model.FactUnsatisfied:
			return model.NotSatisfied
		case model.FactSatisfied:
			known++
		}
	}
	if known == 0 {
		return model.Indeterminate
	}
	return model.Satisfied
}

// selectActions picks the actions to execute. In backout mode the caller's
// inverse action set runs wholesale. Otherwise an action is skipped only when
// every fact it corrects is known satisfied: an indeterminate fact still
// selects its action, since actions are idempotent and a missing diagnostic
// must not block hardening.
func selectActions(actions []model.Action, reports []model.FactReport, mode model.RunMode, force bool) []model.Action {
	if mode == model.Backout {
		return actions
	}

	statusByFact := make(map[string]model.FactStatus, len(reports))
	for _, report := range reports {
		statusByFact[report.Name] = report.Status
	}

	targetSatisfied := judge(reports) == model.Satisfied

	selected := make([]model.Action, 0, len(actions))
	for _, action := range actions {
		if force {
			selected = append(selected, action)
			continue
		}
		if len(action.Facts) == 0 {
			if !targetSatisfied {
				selected = append(selected, action)
			}
			continue
		}
		needed := false
		for _, factName := range action.Facts {
			if statusByFact[factName] != model.FactSatisfied {
				needed = true
				break
			}
		}
		if needed {
			selected = append(selected, action)
		}
	}
	return selected
}

// applyActions executes the selected actions in declared order. Single action
// failures are recorded and the next action is still attempted; a missing
// prerequisite or a failed config check aborts immediately.
func (r *Reconciler) applyActions(ctx context.Context, target model.Target, selected []model.Action, collab Collaborator, mode model.RunMode, interact InteractionFn, result *model.RunResult) error {
	checker, checkable := collab.(ConfigChecker)

	for _, action := range selected {
		if action.Destructive && !r.authorizeDestructive(action, mode, interact, result) {
			result.ActionsDeclined = append(result.ActionsDeclined, action.Name)
			continue
		}

		if action.Activates && checkable {
			if err := checker.Validate(ctx); err != nil {
				// Never activate a config that fails its sanity check.
				checkErr := lockerrors.NewConfigCheckError(target.Name, err)
				result.Errors = append(result.Errors, checkErr)
				return checkErr
			}
		}

		if err := collab.Write(ctx, action); err != nil {
			var prereq *lockerrors.PrerequisiteError
			if errors.As(err, &prereq) {
				result.Errors = append(result.Errors, err)
				return err
			}
			result.Errors = append(result.Errors, lockerrors.NewActionError(action.Name, err))
			r.logger.Error(err, "action failed", logger.F("action", action.Name))
			continue
		}

		result.ActionsApplied = append(result.ActionsApplied, action.Name)
		r.logger.Debug("action applied", logger.F("action", action.Name))
	}

	return nil
}

// authorizeDestructive gates a destructive action: an interactive prompt in
// apply mode, the caller's explicit preauthorization otherwise. A decline is
// recorded, not treated as a failure.
func (r *Reconciler) authorizeDestructive(action model.Action, mode model.RunMode, interact InteractionFn, result *model.RunResult) bool {
	if mode == model.Apply {
		if interact == nil {
			return false
		}
		yes, err := interact(fmt.Sprintf("action %s is destructive; run it?", action.Name))
		if err != nil {
			result.Errors = append(result.Errors, err)
			return false
		}
		return yes
	}
	return action.Preauthorized
}
