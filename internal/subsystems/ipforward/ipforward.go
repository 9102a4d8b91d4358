package ipforward

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/alexisbeaulieu97/lockstep/internal/backup"
	"github.com/alexisbeaulieu97/lockstep/internal/config"
	"github.com/alexisbeaulieu97/lockstep/internal/execx"
	"github.com/alexisbeaulieu97/lockstep/internal/logger"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
	"github.com/alexisbeaulieu97/lockstep/pkg/diff"
)

const (
	// DropInPath pins the value across reboots; the runtime value is applied
	// through sysctl.
	DropInPath = "/etc/sysctl.d/99-lockstep-ipforward.conf"

	sysctlKey = "net.ipv4.ip_forward"

	// dropInHeader marks files lockstep wrote. Content without it at
	// DropInPath belongs to the operator and is preserved, not managed.
	dropInHeader = "# Managed by lockstep. Manual edits will be overwritten.\n"

	factValue  = "sysctl.ip_forward"
	factDropIn = "sysctl.ip_forward_dropin"
)

// Subsystem pins the IPv4 forwarding sysctl via a sysctl.d drop-in.
type Subsystem struct{}

// New creates the ip_forward subsystem.
func New() *Subsystem {
	return &Subsystem{}
}

var _ subsystem.Subsystem = (*Subsystem)(nil)

func (s *Subsystem) Metadata() subsystem.Metadata {
	return subsystem.Metadata{
		Type:        "ip_forward",
		Description: "Pins net.ipv4.ip_forward through a sysctl.d drop-in.",
	}
}

func (s *Subsystem) Build(cfg *config.Subsystem, deps subsystem.Deps) (*subsystem.Plan, error) {
	if cfg == nil || cfg.IPForward == nil {
		return nil, fmt.Errorf("ip_forward configuration missing")
	}

	value := cfg.IPForward.Value
	if value == "" {
		value = "0"
	}
	restoreValue := cfg.IPForward.RestoreValue
	if restoreValue == "" {
		restoreValue = "1"
	}

	collab := &collaborator{
		runner:       deps.Runner,
		backups:      deps.Backups,
		logger:       deps.Logger,
		value:        value,
		restoreValue: restoreValue,
	}

	harden := model.Target{
		Name: cfg.ID,
		Facts: []model.Fact{
			{Name: factValue, Desired: value, Comparator: model.CompareExact},
		},
	}
	hardenActions := []model.Action{
		{Name: "write_sysctl_dropin", Facts: []string{factValue}, Reversible: true},
		{Name: "apply_sysctl", Activates: true},
	}

	restore := model.Target{
		Name: cfg.ID + " restore",
		Facts: []model.Fact{
			{Name: factDropIn, Desired: "absent", Comparator: model.CompareExact},
			{Name: factValue, Desired: restoreValue, Comparator: model.CompareExact},
		},
	}
	restoreActions := []model.Action{
		{Name: "remove_sysctl_dropin", Facts: []string{factDropIn}, Reversible: true},
		{Name: "restore_runtime_value", Facts: []string{factValue}, Reversible: true},
	}

	return &subsystem.Plan{
		Harden:         harden,
		HardenActions:  hardenActions,
		Restore:        restore,
		RestoreActions: restoreActions,
		Collaborator:   collab,
	}, nil
}

type collaborator struct {
	runner       execx.Runner
	backups      *backup.Store
	logger       *logger.Logger
	value        string
	restoreValue string
}

func (c *collaborator) Read(ctx context.Context, factName string) (string, error) {
	switch factName {
	case factValue:
		res, err := c.runner.Run(ctx, "sysctl", "-n", sysctlKey)
		if err != nil {
			return "", err
		}
		if !res.Ok() {
			return "", fmt.Errorf("sysctl -n %s exited %d: %s", sysctlKey, res.ExitCode, res.Stderr)
		}
		return res.Stdout, nil
	case factDropIn:
		data, err := c.runner.ReadFile(DropInPath)
		if err != nil {
			if os.IsNotExist(err) {
				return "absent", nil
			}
			return "", err
		}
		// A foreign file at this path is not our drop-in.
		if !managedContent(data) {
			return "absent", nil
		}
		return "present", nil
	default:
		return "", fmt.Errorf("unknown fact %s", factName)
	}
}

func (c *collaborator) Write(ctx context.Context, action model.Action) error {
	switch action.Name {
	case "write_sysctl_dropin":
		if err := c.snapshotDropIn(); err != nil {
			return err
		}
		content := []byte(fmt.Sprintf("%s%s = %s\n", dropInHeader, sysctlKey, c.value))
		c.logDropInDiff(content)
		return c.runner.WriteFile(DropInPath, content, 0o644)
	case "apply_sysctl":
		res, err := c.runner.Run(ctx, "sysctl", "--system")
		if err != nil {
			return err
		}
		if !res.Ok() {
			return fmt.Errorf("sysctl --system exited %d: %s", res.ExitCode, res.Stderr)
		}
		return nil
	case "remove_sysctl_dropin":
		return c.restoreDropIn()
	case "restore_runtime_value":
		res, err := c.runner.Run(ctx, "sysctl", "-w", fmt.Sprintf("%s=%s", sysctlKey, c.restoreValue))
		if err != nil {
			return err
		}
		if !res.Ok() {
			return fmt.Errorf("sysctl -w exited %d: %s", res.ExitCode, res.Stderr)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %s", action.Name)
	}
}

func (c *collaborator) logDropInDiff(proposed []byte) {
	if c.logger == nil {
		return
	}
	current, err := c.runner.ReadFile(DropInPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	if d := diff.Unified(current, proposed, DropInPath, DropInPath+" (proposed)"); d != "" {
		c.logger.Debug("updating sysctl drop-in", logger.F("diff", d))
	}
}

// snapshotDropIn preserves operator-owned content before lockstep touches the
// path. Content lockstep itself wrote is reproducible from the profile and is
// never snapshotted, so Latest keeps pointing at the pre-hardening state.
func (c *collaborator) snapshotDropIn() error {
	if c.backups == nil {
		return nil
	}
	data, err := c.runner.ReadFile(DropInPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if managedContent(data) {
		return nil
	}
	return c.backups.Snapshot(DropInPath, data)
}

// restoreDropIn puts the most recently snapshotted pre-hardening drop-in back
// in place; with no snapshot to restore, the managed file is removed.
func (c *collaborator) restoreDropIn() error {
	if err := c.snapshotDropIn(); err != nil {
		return err
	}
	if c.backups != nil {
		data, ok, err := c.backups.Latest(DropInPath)
		if err != nil {
			return err
		}
		if ok && !managedContent(data) {
			return c.runner.WriteFile(DropInPath, data, 0o644)
		}
	}
	return c.runner.Remove(DropInPath)
}

func managedContent(data []byte) bool {
	return bytes.HasPrefix(data, []byte("# Managed by lockstep."))
}
