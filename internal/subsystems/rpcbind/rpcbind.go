package rpcbind

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/lockstep/internal/config"
	"github.com/alexisbeaulieu97/lockstep/internal/execx"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
	lockerrors "github.com/alexisbeaulieu97/lockstep/pkg/errors"
)

const (
	packageName = "rpcbind"
	serviceUnit = "rpcbind.service"
	socketUnit  = "rpcbind.socket"

	factServiceActive  = "rpcbind.service.active"
	factSocketActive   = "rpcbind.socket.active"
	factServiceEnabled = "rpcbind.service.enabled"
	factSocketEnabled  = "rpcbind.socket.enabled"
	factPortListening  = "rpcbind.port.listening"
	factPkgInstalled   = "rpcbind.package.installed"
)

// Subsystem removes the rpcbind portmapper from the attack surface: stop,
// disable and mask both units, optionally purging the package.
type Subsystem struct{}

// New creates the rpcbind subsystem.
func New() *Subsystem {
	return &Subsystem{}
}

var _ subsystem.Subsystem = (*Subsystem)(nil)

func (s *Subsystem) Metadata() subsystem.Metadata {
	return subsystem.Metadata{
		Type:        "rpcbind",
		Description: "Stops, disables and masks rpcbind; optionally purges the package.",
	}
}

func (s *Subsystem) Build(cfg *config.Subsystem, deps subsystem.Deps) (*subsystem.Plan, error) {
	if cfg == nil || cfg.RPCBind == nil {
		return nil, fmt.Errorf("rpcbind configuration missing")
	}

	collab := &collaborator{runner: deps.Runner}

	// The port fact reads through ss, which not every host carries. A failed
	// read marks it indeterminate without blocking the rest of the target.
	hardenFacts := []model.Fact{
		{Name: factServiceActive, Desired: "false", Comparator: model.CompareBool},
		{Name: factSocketActive, Desired: "false", Comparator: model.CompareBool},
		{Name: factServiceEnabled, Desired: "masked", Comparator: model.CompareExact},
		{Name: factSocketEnabled, Desired: "masked", Comparator: model.CompareExact},
		{Name: factPortListening, Desired: "false", Comparator: model.CompareBool},
	}
	hardenActions := []model.Action{
		{Name: "stop_rpcbind", Facts: []string{factServiceActive, factSocketActive, factPortListening}, Reversible: true},
		{Name: "disable_rpcbind", Facts: []string{factServiceEnabled, factSocketEnabled}, Reversible: true},
		{Name: "mask_rpcbind", Facts: []string{factServiceEnabled, factSocketEnabled}, Reversible: true},
	}

	if cfg.RPCBind.Purge {
		hardenFacts = append(hardenFacts, model.Fact{
			Name: factPkgInstalled, Desired: "false", Comparator: model.CompareBool,
		})
		hardenActions = append(hardenActions, model.Action{
			Name:          "purge_rpcbind",
			Facts:         []string{factPkgInstalled},
			Destructive:   true,
			Preauthorized: deps.AuthorizeDestructive,
		})
	}

	restore := model.Target{
		Name: cfg.ID + " restore",
		Facts: []model.Fact{
			{Name: factPkgInstalled, Desired: "true", Comparator: model.CompareBool},
			{Name: factServiceEnabled, Desired: "enabled", Comparator: model.CompareExact},
			{Name: factSocketEnabled, Desired: "enabled", Comparator: model.CompareExact},
			{Name: factServiceActive, Desired: "true", Comparator: model.CompareBool},
			{Name: factSocketActive, Desired: "true", Comparator: model.CompareBool},
		},
	}
	restoreActions := []model.Action{
		{Name: "install_rpcbind", Facts: []string{factPkgInstalled}, Reversible: true},
		{Name: "unmask_rpcbind", Facts: []string{factServiceEnabled, factSocketEnabled}, Reversible: true},
		{Name: "enable_rpcbind", Facts: []string{factServiceEnabled, factSocketEnabled}, Reversible: true},
		{Name: "start_rpcbind", Facts: []string{factServiceActive, factSocketActive}, Reversible: true},
	}

	return &subsystem.Plan{
		Harden:         model.Target{Name: cfg.ID, Facts: hardenFacts},
		HardenActions:  hardenActions,
		Restore:        restore,
		RestoreActions: restoreActions,
		Collaborator:   collab,
	}, nil
}

type collaborator struct {
	runner execx.Runner
}

func (c *collaborator) Read(ctx context.Context, factName string) (string, error) {
	switch factName {
	case factServiceActive:
		return c.unitActive(ctx, serviceUnit)
	case factSocketActive:
		return c.unitActive(ctx, socketUnit)
	case factServiceEnabled:
		return c.unitEnabled(ctx, serviceUnit)
	case factSocketEnabled:
		return c.unitEnabled(ctx, socketUnit)
	case factPortListening:
		return c.portListening(ctx)
	case factPkgInstalled:
		return c.packageInstalled(ctx)
	default:
		return "", fmt.Errorf("unknown fact %s", factName)
	}
}

// unitActive reports systemctl is-active output verbatim. The command exits
// non-zero for inactive units; only a failure to run it at all is an error.
func (c *collaborator) unitActive(ctx context.Context, unit string) (string, error) {
	res, err := c.runner.Run(ctx, "systemctl", "is-active", unit)
	if err != nil {
		return "", err
	}
	if res.Stdout == "" {
		return "", fmt.Errorf("systemctl is-active %s produced no output: %s", unit, res.Stderr)
	}
	return res.Stdout, nil
}

func (c *collaborator) unitEnabled(ctx context.Context, unit string) (string, error) {
	res, err := c.runner.Run(ctx, "systemctl", "is-enabled", unit)
	if err != nil {
		return "", err
	}
	if res.Stdout == "" {
		// Unit file absent (e.g. package purged without a lingering mask).
		return "not-found", nil
	}
	return res.Stdout, nil
}

// portListening checks whether anything listens on the portmapper port. ss is
// an optional diagnostic; hosts without it report the fact as unobservable.
func (c *collaborator) portListening(ctx context.Context) (string, error) {
	if _, err := c.runner.LookPath("ss"); err != nil {
		return "", err
	}
	res, err := c.runner.Run(ctx, "ss", "-H", "-tuln", "sport", "=", ":111")
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", fmt.Errorf("ss exited %d: %s", res.ExitCode, res.Stderr)
	}
	if res.Stdout == "" {
		return "false", nil
	}
	return "true", nil
}

func (c *collaborator) packageInstalled(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, "dpkg-query", "-W", "-f", "${db:Status-Status}", packageName)
	if err != nil {
		return "", err
	}
	if res.Ok() && res.Stdout == "installed" {
		return "true", nil
	}
	return "false", nil
}

func (c *collaborator) Write(ctx context.Context, action model.Action) error {
	switch action.Name {
	case "stop_rpcbind":
		return c.systemctl(ctx, "stop", socketUnit, serviceUnit)
	case "disable_rpcbind":
		return c.systemctl(ctx, "disable", serviceUnit, socketUnit)
	case "mask_rpcbind":
		return c.systemctl(ctx, "mask", serviceUnit, socketUnit)
	case "purge_rpcbind":
		return c.apt(ctx, "purge")
	case "install_rpcbind":
		return c.apt(ctx, "install")
	case "unmask_rpcbind":
		return c.systemctl(ctx, "unmask", serviceUnit, socketUnit)
	case "enable_rpcbind":
		return c.systemctl(ctx, "enable", serviceUnit, socketUnit)
	case "start_rpcbind":
		return c.systemctl(ctx, "start", socketUnit, serviceUnit)
	default:
		return fmt.Errorf("unknown action %s", action.Name)
	}
}

func (c *collaborator) systemctl(ctx context.Context, verb string, units ...string) error {
	args := append([]string{verb}, units...)
	res, err := c.runner.Run(ctx, "systemctl", args...)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("systemctl %s exited %d: %s", verb, res.ExitCode, res.Stderr)
	}
	return nil
}

// apt runs the package manager, which is a hard prerequisite: without it
// there is no corrective path, so its absence aborts the whole run.
func (c *collaborator) apt(ctx context.Context, verb string) error {
	if _, err := c.runner.LookPath("apt-get"); err != nil {
		return lockerrors.NewPrerequisiteError("apt-get", err)
	}
	res, err := c.runner.Run(ctx, "apt-get", verb, "-y", packageName)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("apt-get %s exited %d: %s", verb, res.ExitCode, res.Stderr)
	}
	return nil
}
