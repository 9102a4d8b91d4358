package sshcrypto

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alexisbeaulieu97/lockstep/internal/backup"
	"github.com/alexisbeaulieu97/lockstep/internal/config"
	"github.com/alexisbeaulieu97/lockstep/internal/execx"
	"github.com/alexisbeaulieu97/lockstep/internal/logger"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
	"github.com/alexisbeaulieu97/lockstep/pkg/diff"
)

const (
	// DropInPath is where the crypto policy drop-in lands. Files under
	// sshd_config.d are read before the main config, so these lines win.
	DropInPath = "/etc/ssh/sshd_config.d/50-lockstep-crypto.conf"

	serviceName = "ssh"

	// dropInHeader marks files lockstep wrote. Content without it at
	// DropInPath belongs to the operator and is preserved, not managed.
	dropInHeader = "# Managed by lockstep. Manual edits will be overwritten.\n"

	factCiphers = "sshd.ciphers"
	factKex     = "sshd.kexalgorithms"
	factMACs    = "sshd.macs"
	factDropIn  = "sshd.crypto_dropin"
)

// Baseline allow-lists enforced when the profile does not override them.
// These must agree byte-for-byte with what sshd -T reports after the drop-in
// is active; changing one side without the other makes checks report "not
// hardened" forever.
var (
	DefaultCiphers = []string{
		"chacha20-poly1305@openssh.com",
		"aes256-gcm@openssh.com",
		"aes128-gcm@openssh.com",
		"aes256-ctr",
		"aes192-ctr",
		"aes128-ctr",
	}
	DefaultKexAlgorithms = []string{
		"sntrup761x25519-sha512@openssh.com",
		"curve25519-sha256",
		"curve25519-sha256@libssh.org",
		"diffie-hellman-group16-sha512",
		"diffie-hellman-group18-sha512",
		"diffie-hellman-group-exchange-sha256",
	}
	DefaultMACs = []string{
		"hmac-sha2-512-etm@openssh.com",
		"hmac-sha2-256-etm@openssh.com",
		"umac-128-etm@openssh.com",
	}
)

// Subsystem hardens the SSH daemon's negotiated crypto via a sshd_config.d
// drop-in, verified against sshd -T effective-config output.
type Subsystem struct{}

// New creates the ssh_crypto subsystem.
func New() *Subsystem {
	return &Subsystem{}
}

var _ subsystem.Subsystem = (*Subsystem)(nil)

func (s *Subsystem) Metadata() subsystem.Metadata {
	return subsystem.Metadata{
		Type:        "ssh_crypto",
		Description: "Constrains sshd ciphers, key exchange and MACs via a config drop-in.",
	}
}

func (s *Subsystem) Build(cfg *config.Subsystem, deps subsystem.Deps) (*subsystem.Plan, error) {
	if cfg == nil || cfg.SSHCrypto == nil {
		return nil, fmt.Errorf("ssh_crypto configuration missing")
	}

	ciphers := orDefault(cfg.SSHCrypto.Ciphers, DefaultCiphers)
	kex := orDefault(cfg.SSHCrypto.KexAlgorithms, DefaultKexAlgorithms)
	macs := orDefault(cfg.SSHCrypto.MACs, DefaultMACs)

	collab := &collaborator{
		runner:  deps.Runner,
		backups: deps.Backups,
		logger:  deps.Logger,
		ciphers: ciphers,
		kex:     kex,
		macs:    macs,
	}

	// The gssapikexalgorithms line is deliberately not checked: sshd -T keeps
	// reporting legacy values there even when GSSAPI authentication is off.
	harden := model.Target{
		Name: cfg.ID,
		Facts: []model.Fact{
			{Name: factCiphers, Desired: strings.Join(ciphers, ","), Comparator: model.CompareExact},
			{Name: factKex, Desired: strings.Join(kex, ","), Comparator: model.CompareExact},
			{Name: factMACs, Desired: strings.Join(macs, ","), Comparator: model.CompareExact},
		},
	}
	hardenActions := []model.Action{
		{Name: "write_crypto_dropin", Facts: []string{factCiphers, factKex, factMACs}, Reversible: true},
		{Name: "reload_sshd", Activates: true},
	}

	restore := model.Target{
		Name: cfg.ID + " restore",
		Facts: []model.Fact{
			{Name: factDropIn, Desired: "absent", Comparator: model.CompareExact},
		},
	}
	restoreActions := []model.Action{
		{Name: "remove_crypto_dropin", Facts: []string{factDropIn}, Reversible: true},
		{Name: "reload_sshd", Activates: true},
	}

	return &subsystem.Plan{
		Harden:         harden,
		HardenActions:  hardenActions,
		Restore:        restore,
		RestoreActions: restoreActions,
		Collaborator:   collab,
	}, nil
}

func orDefault(values, defaults []string) []string {
	if len(values) > 0 {
		return values
	}
	return defaults
}

type collaborator struct {
	runner  execx.Runner
	backups *backup.Store
	logger  *logger.Logger
	ciphers []string
	kex     []string
	macs    []string
}

func (c *collaborator) Read(ctx context.Context, factName string) (string, error) {
	if factName == factDropIn {
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
	}

	key, err := effectiveKey(factName)
	if err != nil {
		return "", err
	}

	res, err := c.runner.Run(ctx, "sshd", "-T")
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", fmt.Errorf("sshd -T exited %d: %s", res.ExitCode, res.Stderr)
	}

	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
		if len(fields) == 2 && fields[0] == key {
			return strings.TrimSpace(fields[1]), nil
		}
	}
	return "", fmt.Errorf("sshd -T output has no %s line", key)
}

func effectiveKey(factName string) (string, error) {
	switch factName {
	case factCiphers:
		return "ciphers", nil
	case factKex:
		return "kexalgorithms", nil
	case factMACs:
		return "macs", nil
	default:
		return "", fmt.Errorf("unknown fact %s", factName)
	}
}

func (c *collaborator) Write(ctx context.Context, action model.Action) error {
	switch action.Name {
	case "write_crypto_dropin":
		if err := c.snapshotDropIn(); err != nil {
			return err
		}
		content := []byte(c.renderDropIn())
		c.logDropInDiff(content)
		return c.runner.WriteFile(DropInPath, content, 0o644)
	case "remove_crypto_dropin":
		return c.restoreDropIn()
	case "reload_sshd":
		res, err := c.runner.Run(ctx, "systemctl", "reload", serviceName)
		if err != nil {
			return err
		}
		if !res.Ok() {
			return fmt.Errorf("systemctl reload %s exited %d: %s", serviceName, res.ExitCode, res.Stderr)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %s", action.Name)
	}
}

// Validate runs sshd's own config check before any reload is attempted.
func (c *collaborator) Validate(ctx context.Context) error {
	res, err := c.runner.Run(ctx, "sshd", "-t")
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("sshd -t exited %d: %s", res.ExitCode, res.Stderr)
	}
	return nil
}

func (c *collaborator) renderDropIn() string {
	var b strings.Builder
	b.WriteString(dropInHeader)
	fmt.Fprintf(&b, "Ciphers %s\n", strings.Join(c.ciphers, ","))
	fmt.Fprintf(&b, "KexAlgorithms %s\n", strings.Join(c.kex, ","))
	fmt.Fprintf(&b, "MACs %s\n", strings.Join(c.macs, ","))
	return b.String()
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
		c.logger.Debug("updating crypto drop-in", logger.F("diff", d))
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
