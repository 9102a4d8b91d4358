package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexisbeaulieu97/lockstep/internal/reconcile"
)

// stdinPrompt asks a yes/no question on stderr and reads the answer from
// stdin. Anything other than an explicit yes declines.
func stdinPrompt(prompt string) (bool, error) {
	return promptOn(os.Stderr, os.Stdin, prompt)
}

// terminalHandover is the slice of *tea.Program that lets a prompt take the
// terminal back from the TUI while it reads a line.
type terminalHandover interface {
	ReleaseTerminal() error
	RestoreTerminal() error
}

// suspendingPrompt wraps ask so the TUI's raw-mode input loop is suspended
// for the duration of the read. Without the handover the program's stdin
// reader swallows the keystrokes meant for the prompt.
func suspendingPrompt(term terminalHandover, ask reconcile.InteractionFn) reconcile.InteractionFn {
	return func(prompt string) (bool, error) {
		if term != nil {
			if err := term.ReleaseTerminal(); err != nil {
				return false, fmt.Errorf("release terminal for prompt: %w", err)
			}
			defer term.RestoreTerminal() //nolint:errcheck
		}
		return ask(prompt)
	}
}

func promptOn(out io.Writer, in io.Reader, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
