package errors

import (
	"fmt"
)

// ParseError represents a YAML profile parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures profile validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ObservationError reports that a fact's live value could not be determined
// (diagnostic tool absent, permission denied). Non-fatal: the reconciler
// marks the fact indeterminate and carries on.
type ObservationError struct {
	Fact string
	Err  error
}

// NewObservationError constructs an ObservationError for the named fact.
func NewObservationError(fact string, err error) error {
	return &ObservationError{Fact: fact, Err: err}
}

func (e *ObservationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Fact != "" {
		return fmt.Sprintf("observation error for fact %s: %v", e.Fact, e.Err)
	}
	return fmt.Sprintf("observation error: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ObservationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ActionError reports that a corrective action did not succeed. Non-fatal:
// the reconciler records it and attempts the next action.
type ActionError struct {
	Action string
	Err    error
}

// NewActionError constructs an ActionError for the named action.
func NewActionError(action string, err error) error {
	return &ActionError{Action: action, Err: err}
}

func (e *ActionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Action != "" {
		return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("action failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ActionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PrerequisiteError reports that a tool required by a mandatory action is
// absent, e.g. no package manager when an install is needed. Fatal: the run
// aborts immediately because no corrective path exists.
type PrerequisiteError struct {
	Tool string
	Err  error
}

// NewPrerequisiteError constructs a PrerequisiteError for the missing tool.
func NewPrerequisiteError(tool string, err error) error {
	return &PrerequisiteError{Tool: tool, Err: err}
}

func (e *PrerequisiteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Tool != "" {
		return fmt.Sprintf("required tool %s is missing: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("required tool missing: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *PrerequisiteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigCheckError reports that a written configuration failed its post-write
// sanity check (e.g. sshd -t rejected the config). Fatal: an unvalidated
// config must never be activated.
type ConfigCheckError struct {
	Subsystem string
	Err       error
}

// NewConfigCheckError constructs a ConfigCheckError for the named subsystem.
func NewConfigCheckError(subsystem string, err error) error {
	return &ConfigCheckError{Subsystem: subsystem, Err: err}
}

func (e *ConfigCheckError) Error() string {
	if e == nil {
		return ""
	}
	if e.Subsystem != "" {
		return fmt.Sprintf("config check failed for %s: %v", e.Subsystem, e.Err)
	}
	return fmt.Sprintf("config check failed: %v", e.Err)
}

// Unwrap exposes the underlying error.
func (e *ConfigCheckError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
