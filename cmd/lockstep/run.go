package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/lockstep/internal/backup"
	"github.com/alexisbeaulieu97/lockstep/internal/config"
	"github.com/alexisbeaulieu97/lockstep/internal/execx"
	"github.com/alexisbeaulieu97/lockstep/internal/logger"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/reconcile"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
	"github.com/alexisbeaulieu97/lockstep/internal/tui"
)

type runOptions struct {
	ProfilePath          string
	Mode                 model.RunMode
	Verbose              bool
	AuthorizeDestructive bool
	NonInteractive       bool
}

var runCmdRunner = runProfile

type plannedRun struct {
	id   string
	plan *subsystem.Plan
}

func runProfile(opts runOptions) error {
	profile, err := config.ParseProfile(opts.ProfilePath)
	if err != nil {
		return newExitError(exitConfig, err)
	}

	level := "info"
	if opts.Verbose || profile.Settings.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return newExitError(exitInternal, err)
	}

	deps := subsystem.Deps{
		Runner:               execx.NewLocal(),
		Logger:               log,
		AuthorizeDestructive: opts.AuthorizeDestructive,
	}

	// check never writes, so it must not need the backup directory either.
	if opts.Mode != model.CheckOnly {
		store, err := backup.Open(profile.Settings.EffectiveBackupDir())
		if err != nil {
			return newExitError(exitInternal, fmt.Errorf("open backup store: %w", err))
		}
		deps.Backups = store
	}

	runs, err := buildRuns(profile, deps)
	if err != nil {
		return newExitError(exitConfig, err)
	}

	ids := make([]string, 0, len(runs))
	for _, r := range runs {
		ids = append(ids, r.id)
	}

	interactive := !opts.NonInteractive
	state := tui.NewModel(profile.Name, opts.Mode, ids)

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(state)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	var interact reconcile.InteractionFn
	if opts.Mode == model.Apply && interactive {
		interact = suspendingPrompt(program, stdinPrompt)
	}

	ctx := context.Background()
	engine := reconcile.New(log)

	var fatal error
	allSatisfied := true
	anyErrors := false

	for _, r := range runs {
		dispatchTuiMessage(interactive, program, &state, tui.RunStartMsg{ID: r.id, Time: time.Now()})

		target, actions := r.plan.Select(opts.Mode)
		res, runErr := engine.Run(ctx, target, actions, r.plan.Collaborator, opts.Mode, interact)

		dispatchTuiMessage(interactive, program, &state, tui.RunDoneMsg{ID: r.id, Result: res, Err: runErr})

		if runErr != nil {
			// Missing prerequisite or failed config check: the host is not in
			// a state we can reason about, stop the whole profile.
			fatal = runErr
			break
		}
		if res.SatisfiedAfter != model.Satisfied {
			allSatisfied = false
		}
		if len(res.Errors) > 0 {
			anyErrors = true
		}
	}

	if interactive {
		if program != nil {
			program.Send(tea.QuitMsg{})
		}
		<-done
		if programErr != nil && fatal == nil {
			fatal = programErr
		}
	} else {
		fmt.Fprintln(os.Stdout, state.View())
	}

	if fatal != nil {
		return newExitError(exitInternal, fatal)
	}
	if !allSatisfied || anyErrors {
		return newExitError(exitUnsatisfied, fmt.Errorf("one or more subsystems are not satisfied"))
	}
	return nil
}

// buildRuns resolves and builds every subsystem plan up front, so a profile
// referencing an unknown type fails before any side effect.
func buildRuns(profile *config.Profile, deps subsystem.Deps) ([]plannedRun, error) {
	runs := make([]plannedRun, 0, len(profile.Subsystems))
	for i := range profile.Subsystems {
		sub := &profile.Subsystems[i]

		impl, err := appRegistry.Get(sub.Type)
		if err != nil {
			return nil, err
		}

		plan, err := impl.Build(sub, depsFor(deps, sub.ID))
		if err != nil {
			return nil, fmt.Errorf("build subsystem %s: %w", sub.ID, err)
		}
		runs = append(runs, plannedRun{id: sub.ID, plan: plan})
	}
	return runs, nil
}

func depsFor(deps subsystem.Deps, id string) subsystem.Deps {
	deps.Logger = deps.Logger.Subsystem(id)
	return deps
}

func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}
