package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("profile.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "profile.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "profile.yaml")
}

func TestValidationErrorAggregatesFields(t *testing.T) {
	t.Parallel()

	err := NewValidationError("subsystems[1].type", "unknown subsystem type", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "subsystems[1].type", validationErr.Field)
	require.Contains(t, validationErr.Message, "unknown subsystem type")
}

func TestObservationErrorIncludesFactName(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("ss: command not found")
	err := NewObservationError("rpcbind.port_listening", underlying)

	var obsErr *ObservationError
	require.ErrorAs(t, err, &obsErr)
	require.Equal(t, "rpcbind.port_listening", obsErr.Fact)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestActionErrorIncludesActionName(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("mask rejected")
	err := NewActionError("mask_rpcbind_service", underlying)

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	require.Equal(t, "mask_rpcbind_service", actionErr.Action)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestPrerequisiteErrorIncludesTool(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("executable file not found in $PATH")
	err := NewPrerequisiteError("apt-get", underlying)

	var prereqErr *PrerequisiteError
	require.ErrorAs(t, err, &prereqErr)
	require.Equal(t, "apt-get", prereqErr.Tool)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "apt-get")
}

func TestConfigCheckErrorIncludesSubsystem(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("bad configuration option")
	err := NewConfigCheckError("ssh_crypto", underlying)

	var checkErr *ConfigCheckError
	require.ErrorAs(t, err, &checkErr)
	require.Equal(t, "ssh_crypto", checkErr.Subsystem)
	require.True(t, stdErrors.Is(err, underlying))
}
