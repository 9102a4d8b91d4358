package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/lockstep/internal/backup"
)

func executeCommandOutput(cmd *cobra.Command, args ...string) (string, error) {
	cmd.SetArgs(args)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	err := cmd.Execute()
	return buf.String(), err
}

func backupsProfile(t *testing.T, dir string) string {
	t.Helper()
	return writeProfile(t, fmt.Sprintf(`version: "1.0"
name: baseline
settings:
  backup_dir: %s
subsystems:
  - id: forwarding
    type: ip_forward
`, dir))
}

func TestBackupsCommandOnEmptyStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	path := backupsProfile(t, dir)

	out, err := executeCommandOutput(newRootCmd(), "backups", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "no snapshots recorded")
}

func TestBackupsCommandListsSnapshots(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	path := backupsProfile(t, dir)

	store, err := backup.Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Snapshot("/etc/sysctl.d/99-lockstep-ipforward.conf", []byte("net.ipv4.ip_forward = 1\n")))

	out, err := executeCommandOutput(newRootCmd(), "backups", "--config", path)
	require.NoError(t, err)
	require.Contains(t, out, "snapshot /etc/sysctl.d/99-lockstep-ipforward.conf")
}

func TestBackupsCommandRejectsMissingProfile(t *testing.T) {
	err := executeCommand(newRootCmd(), "backups", "--config", "/path/does/not/exist")
	require.Error(t, err)

	var exitErr *exitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, exitConfig, exitErr.code)
}
