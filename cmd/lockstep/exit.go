package main

// Process exit codes. check/apply/backout report hardening state through
// them, so scripts can branch without parsing output.
const (
	exitOK          = 0
	exitUnsatisfied = 1
	exitConfig      = 2
	exitInternal    = 3
)

type exitError struct {
	code int
	err  error
}

func newExitError(code int, err error) *exitError {
	return &exitError{code: code, err: err}
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
