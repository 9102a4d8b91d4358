package execx

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Call records one invocation made against the fake runner.
type Call struct {
	Method string
	Args   []string
}

// Fake is an in-memory Runner for tests. Command outputs are keyed by the
// full command line ("name arg1 arg2").
type Fake struct {
	Outputs      map[string]*Result
	RunErrors    map[string]error
	MissingTools map[string]bool
	Files        map[string][]byte
	ReadErrors   map[string]error
	WriteErrors  map[string]error

	Calls []Call
}

// NewFake creates an empty fake runner.
func NewFake() *Fake {
	return &Fake{
		Outputs:      make(map[string]*Result),
		RunErrors:    make(map[string]error),
		MissingTools: make(map[string]bool),
		Files:        make(map[string][]byte),
		ReadErrors:   make(map[string]error),
		WriteErrors:  make(map[string]error),
	}
}

var _ Runner = (*Fake)(nil)

// Stub registers stdout for a command line with exit code zero.
func (f *Fake) Stub(commandLine, stdout string) {
	f.Outputs[commandLine] = &Result{Stdout: stdout}
}

// StubExit registers a command line that exits with the given code.
func (f *Fake) StubExit(commandLine string, code int, stderr string) {
	f.Outputs[commandLine] = &Result{Stderr: stderr, ExitCode: code}
}

func (f *Fake) Run(_ context.Context, name string, args ...string) (*Result, error) {
	line := commandLine(name, args)
	f.Calls = append(f.Calls, Call{Method: "Run", Args: append([]string{name}, args...)})

	if f.MissingTools[name] {
		return nil, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	if err, ok := f.RunErrors[line]; ok {
		return nil, err
	}
	if res, ok := f.Outputs[line]; ok {
		return res, nil
	}
	return &Result{}, nil
}

func (f *Fake) LookPath(name string) (string, error) {
	f.Calls = append(f.Calls, Call{Method: "LookPath", Args: []string{name}})
	if f.MissingTools[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

func (f *Fake) ReadFile(path string) ([]byte, error) {
	f.Calls = append(f.Calls, Call{Method: "ReadFile", Args: []string{path}})
	if err, ok := f.ReadErrors[path]; ok {
		return nil, err
	}
	data, ok := f.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *Fake) WriteFile(path string, data []byte, _ os.FileMode) error {
	f.Calls = append(f.Calls, Call{Method: "WriteFile", Args: []string{path}})
	if err, ok := f.WriteErrors[path]; ok {
		return err
	}
	f.Files[path] = data
	return nil
}

func (f *Fake) Remove(path string) error {
	f.Calls = append(f.Calls, Call{Method: "Remove", Args: []string{path}})
	delete(f.Files, path)
	return nil
}

// CommandLines returns the command lines run so far, for ordering assertions.
func (f *Fake) CommandLines() []string {
	var lines []string
	for _, call := range f.Calls {
		if call.Method == "Run" {
			lines = append(lines, strings.Join(call.Args, " "))
		}
	}
	return lines
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
