package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandover struct {
	calls      []string
	releaseErr error
}

func (f *fakeHandover) ReleaseTerminal() error {
	f.calls = append(f.calls, "release")
	return f.releaseErr
}

func (f *fakeHandover) RestoreTerminal() error {
	f.calls = append(f.calls, "restore")
	return nil
}

func TestPromptOn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		accept bool
	}{
		{"yes accepts", "yes\n", true},
		{"y accepts", "y\n", true},
		{"uppercase accepts", "Y\n", true},
		{"no declines", "no\n", false},
		{"empty line declines", "\n", false},
		{"garbage declines", "maybe\n", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := &bytes.Buffer{}
			got, err := promptOn(out, strings.NewReader(tt.input), "purge rpcbind?")
			require.NoError(t, err)
			require.Equal(t, tt.accept, got)
			require.Contains(t, out.String(), "purge rpcbind? [y/N]:")
		})
	}
}

func TestPromptOnClosedInputDeclines(t *testing.T) {
	t.Parallel()

	_, err := promptOn(&bytes.Buffer{}, strings.NewReader(""), "continue?")
	require.Error(t, err)
}

func TestSuspendingPromptReleasesTerminalAroundRead(t *testing.T) {
	t.Parallel()

	term := &fakeHandover{}
	fn := suspendingPrompt(term, func(prompt string) (bool, error) {
		// The TUI must have given the terminal back before the read starts,
		// otherwise its input loop steals the keystrokes.
		require.Equal(t, []string{"release"}, term.calls)
		require.Equal(t, "purge rpcbind?", prompt)
		return true, nil
	})

	got, err := fn("purge rpcbind?")
	require.NoError(t, err)
	require.True(t, got)
	require.Equal(t, []string{"release", "restore"}, term.calls)
}

func TestSuspendingPromptRestoresAfterDecline(t *testing.T) {
	t.Parallel()

	term := &fakeHandover{}
	fn := suspendingPrompt(term, func(string) (bool, error) {
		return false, errors.New("stdin closed")
	})

	got, err := fn("continue?")
	require.Error(t, err)
	require.False(t, got)
	require.Equal(t, []string{"release", "restore"}, term.calls)
}

func TestSuspendingPromptFailsWhenReleaseFails(t *testing.T) {
	t.Parallel()

	term := &fakeHandover{releaseErr: errors.New("tty gone")}
	asked := false
	fn := suspendingPrompt(term, func(string) (bool, error) {
		asked = true
		return true, nil
	})

	got, err := fn("continue?")
	require.Error(t, err)
	require.False(t, got)
	require.False(t, asked)
	require.Equal(t, []string{"release"}, term.calls)
}

func TestSuspendingPromptWithoutProgramAsksDirectly(t *testing.T) {
	t.Parallel()

	fn := suspendingPrompt(nil, func(string) (bool, error) {
		return true, nil
	})

	got, err := fn("continue?")
	require.NoError(t, err)
	require.True(t, got)
}
