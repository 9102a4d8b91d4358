package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result captures the output of one finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Ok reports whether the command exited zero.
func (r *Result) Ok() bool {
	return r != nil && r.ExitCode == 0
}

// Runner is the narrow boundary to the host: subprocesses and the config
// files the subsystems manage. Collaborators depend on this interface so
// tests can substitute a recording fake.
type Runner interface {
	// Run executes a command and returns its captured output. A non-zero
	// exit is reported through Result.ExitCode, not as an error; errors mean
	// the command could not be started at all.
	Run(ctx context.Context, name string, args ...string) (*Result, error)

	// LookPath reports the resolved path of a tool, or an error when absent.
	LookPath(name string) (string, error)

	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, mode os.FileMode) error
	Remove(path string) error
}

// Local runs commands on the host.
type Local struct{}

// NewLocal creates a Runner backed by os/exec and the local filesystem.
func NewLocal() *Local {
	return &Local{}
}

var _ Runner = (*Local)(nil)

func (l *Local) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", name, err)
	}

	return result, nil
}

func (l *Local) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (l *Local) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (l *Local) WriteFile(path string, data []byte, mode os.FileMode) error {
	return os.WriteFile(path, data, mode)
}

func (l *Local) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
