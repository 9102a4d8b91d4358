package sshcrypto

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/lockstep/internal/backup"
	"github.com/alexisbeaulieu97/lockstep/internal/config"
	"github.com/alexisbeaulieu97/lockstep/internal/execx"
	"github.com/alexisbeaulieu97/lockstep/internal/model"
	"github.com/alexisbeaulieu97/lockstep/internal/reconcile"
	"github.com/alexisbeaulieu97/lockstep/internal/subsystem"
)

func buildPlan(t *testing.T, cfg *config.SSHCryptoConfig, runner execx.Runner) *subsystem.Plan {
	t.Helper()
	plan, err := New().Build(&config.Subsystem{ID: "ssh", Type: "ssh_crypto", SSHCrypto: cfg}, subsystem.Deps{Runner: runner})
	require.NoError(t, err)
	return plan
}

const effectiveConfig = `port 22
ciphers chacha20-poly1305@openssh.com,aes256-ctr
kexalgorithms curve25519-sha256
macs hmac-sha2-512-etm@openssh.com
gssapikexalgorithms gss-group14-sha256-,gss-gex-sha1-
`

func TestBuildUsesBaselineWhenUnset(t *testing.T) {
	t.Parallel()

	plan := buildPlan(t, &config.SSHCryptoConfig{}, execx.NewFake())

	require.Equal(t, "ssh", plan.Harden.Name)
	require.Len(t, plan.Harden.Facts, 3)
	require.Equal(t, strings.Join(DefaultCiphers, ","), plan.Harden.Facts[0].Desired)
	require.Equal(t, model.CompareExact, plan.Harden.Facts[0].Comparator)

	// The gssapi kex line never becomes a fact.
	for _, fact := range plan.Harden.Facts {
		require.NotContains(t, fact.Name, "gssapi")
	}
}

func TestBuildHonoursProfileOverrides(t *testing.T) {
	t.Parallel()

	plan := buildPlan(t, &config.SSHCryptoConfig{Ciphers: []string{"aes256-ctr"}}, execx.NewFake())

	require.Equal(t, "aes256-ctr", plan.Harden.Facts[0].Desired)
	require.Equal(t, strings.Join(DefaultKexAlgorithms, ","), plan.Harden.Facts[1].Desired)
}

func TestReadParsesEffectiveConfig(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	fake.Stub("sshd -T", effectiveConfig)
	plan := buildPlan(t, &config.SSHCryptoConfig{}, fake)

	value, err := plan.Collaborator.Read(context.Background(), "sshd.ciphers")
	require.NoError(t, err)
	require.Equal(t, "chacha20-poly1305@openssh.com,aes256-ctr", value)

	value, err = plan.Collaborator.Read(context.Background(), "sshd.kexalgorithms")
	require.NoError(t, err)
	require.Equal(t, "curve25519-sha256", value)
}

func TestReadFailsWhenDaemonRejectsConfig(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	fake.StubExit("sshd -T", 255, "bad configuration option")
	plan := buildPlan(t, &config.SSHCryptoConfig{}, fake)

	_, err := plan.Collaborator.Read(context.Background(), "sshd.ciphers")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad configuration option")
}

func TestReadDropInFact(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	plan := buildPlan(t, &config.SSHCryptoConfig{}, fake)

	value, err := plan.Collaborator.Read(context.Background(), "sshd.crypto_dropin")
	require.NoError(t, err)
	require.Equal(t, "absent", value)

	fake.Files[DropInPath] = []byte(dropInHeader + "Ciphers aes256-ctr\n")
	value, err = plan.Collaborator.Read(context.Background(), "sshd.crypto_dropin")
	require.NoError(t, err)
	require.Equal(t, "present", value)

	// An operator-owned file at the same path is not our drop-in.
	fake.Files[DropInPath] = []byte("Ciphers aes256-ctr\n")
	value, err = plan.Collaborator.Read(context.Background(), "sshd.crypto_dropin")
	require.NoError(t, err)
	require.Equal(t, "absent", value)
}

func TestWriteDropInRendersAllowLists(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	plan := buildPlan(t, &config.SSHCryptoConfig{
		Ciphers:       []string{"aes256-ctr"},
		KexAlgorithms: []string{"curve25519-sha256"},
		MACs:          []string{"hmac-sha2-512-etm@openssh.com"},
	}, fake)

	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "write_crypto_dropin"}))

	content := string(fake.Files[DropInPath])
	require.Contains(t, content, "Ciphers aes256-ctr\n")
	require.Contains(t, content, "KexAlgorithms curve25519-sha256\n")
	require.Contains(t, content, "MACs hmac-sha2-512-etm@openssh.com\n")
}

func TestWriteSnapshotsExistingDropIn(t *testing.T) {
	t.Parallel()

	store, err := backup.Open(t.TempDir() + "/backups")
	require.NoError(t, err)

	fake := execx.NewFake()
	fake.Files[DropInPath] = []byte("Ciphers old\n")

	plan, err := New().Build(
		&config.Subsystem{ID: "ssh", Type: "ssh_crypto", SSHCrypto: &config.SSHCryptoConfig{}},
		subsystem.Deps{Runner: fake, Backups: store},
	)
	require.NoError(t, err)

	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "write_crypto_dropin"}))

	data, ok, err := store.Latest(DropInPath)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Ciphers old\n", string(data))
}

func TestValidateRunsDaemonConfigCheck(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	fake.Stub("sshd -t", "")
	plan := buildPlan(t, &config.SSHCryptoConfig{}, fake)

	checker, ok := plan.Collaborator.(reconcile.ConfigChecker)
	require.True(t, ok)
	require.NoError(t, checker.Validate(context.Background()))

	fake.StubExit("sshd -t", 255, "garbage at line 3")
	require.Error(t, checker.Validate(context.Background()))
}

func TestRestorePlanRemovesDropIn(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	fake.Files[DropInPath] = []byte(dropInHeader + "Ciphers aes256-ctr\n")
	plan := buildPlan(t, &config.SSHCryptoConfig{}, fake)

	require.Equal(t, "remove_crypto_dropin", plan.RestoreActions[0].Name)
	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "remove_crypto_dropin"}))
	require.NotContains(t, fake.Files, DropInPath)
}

func TestBackoutRestoresPreHardeningDropIn(t *testing.T) {
	t.Parallel()

	store, err := backup.Open(t.TempDir() + "/backups")
	require.NoError(t, err)

	fake := execx.NewFake()
	fake.Files[DropInPath] = []byte("Ciphers legacy\n")

	plan, err := New().Build(
		&config.Subsystem{ID: "ssh", Type: "ssh_crypto", SSHCrypto: &config.SSHCryptoConfig{}},
		subsystem.Deps{Runner: fake, Backups: store},
	)
	require.NoError(t, err)

	// Hardening snapshots the operator's file before overwriting it.
	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "write_crypto_dropin"}))
	require.Contains(t, string(fake.Files[DropInPath]), "Ciphers "+strings.Join(DefaultCiphers, ","))

	// Backout puts the snapshotted file back instead of deleting the path.
	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "remove_crypto_dropin"}))
	require.Equal(t, "Ciphers legacy\n", string(fake.Files[DropInPath]))
}

func TestBackoutRemovesDropInWithoutSnapshot(t *testing.T) {
	t.Parallel()

	store, err := backup.Open(t.TempDir() + "/backups")
	require.NoError(t, err)

	fake := execx.NewFake()

	plan, err := New().Build(
		&config.Subsystem{ID: "ssh", Type: "ssh_crypto", SSHCrypto: &config.SSHCryptoConfig{}},
		subsystem.Deps{Runner: fake, Backups: store},
	)
	require.NoError(t, err)

	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "write_crypto_dropin"}))
	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "remove_crypto_dropin"}))
	require.NotContains(t, fake.Files, DropInPath)
}

func TestManagedDropInIsNotSnapshotted(t *testing.T) {
	t.Parallel()

	store, err := backup.Open(t.TempDir() + "/backups")
	require.NoError(t, err)

	fake := execx.NewFake()

	plan, err := New().Build(
		&config.Subsystem{ID: "ssh", Type: "ssh_crypto", SSHCrypto: &config.SSHCryptoConfig{}},
		subsystem.Deps{Runner: fake, Backups: store},
	)
	require.NoError(t, err)

	// Applying twice must not bury the pre-hardening state under a snapshot
	// of our own generated content.
	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "write_crypto_dropin"}))
	require.NoError(t, plan.Collaborator.Write(context.Background(), model.Action{Name: "write_crypto_dropin"}))

	_, ok, err := store.Latest(DropInPath)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHardenRunEndToEnd(t *testing.T) {
	t.Parallel()

	fake := execx.NewFake()
	fake.Stub("sshd -T", effectiveConfig)
	fake.Stub("sshd -t", "")
	fake.Stub("systemctl reload ssh", "")

	plan := buildPlan(t, &config.SSHCryptoConfig{}, fake)

	target, actions := plan.Select(model.ApplyUnattended)
	res, err := reconcile.New(nil).Run(context.Background(), target, actions, plan.Collaborator, model.ApplyUnattended, nil)
	require.NoError(t, err)
	require.Equal(t, model.NotSatisfied, res.SatisfiedBefore)
	require.Equal(t, []string{"write_crypto_dropin", "reload_sshd"}, res.ActionsApplied)

	// The config check ran before the reload.
	lines := fake.CommandLines()
	require.Contains(t, lines, "sshd -t")
	require.Less(t, indexOf(lines, "sshd -t"), indexOf(lines, "systemctl reload ssh"))
}

func indexOf(lines []string, want string) int {
	for i, line := range lines {
		if line == want {
			return i
		}
	}
	return -1
}
