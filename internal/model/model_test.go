package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExactComparatorIsStrict(t *testing.T) {
	t.Parallel()

	fact := Fact{
		Name:       "sshd.ciphers",
		Desired:    "chacha20-poly1305@openssh.com,aes256-gcm@openssh.com",
		Comparator: CompareExact,
	}

	require.True(t, fact.Satisfied("chacha20-poly1305@openssh.com,aes256-gcm@openssh.com"))

	// One extra token is not a near-match; it is not satisfied.
	require.False(t, fact.Satisfied("chacha20-poly1305@openssh.com,aes256-gcm@openssh.com,aes128-cbc"))
	require.False(t, fact.Satisfied("chacha20-poly1305@openssh.com"))
	require.False(t, fact.Satisfied(""))
}

func TestNotContainsComparator(t *testing.T) {
	t.Parallel()

	fact := Fact{Name: "sshd.kexalgorithms", Desired: "diffie-hellman-group1-sha1", Comparator: CompareNotContains}

	cases := []struct {
		name     string
		observed string
		want     bool
	}{
		{"token absent", "curve25519-sha256,sntrup761x25519-sha512@openssh.com", true},
		{"token present", "curve25519-sha256,diffie-hellman-group1-sha1", false},
		{"token alone", "diffie-hellman-group1-sha1", false},
		{"substring does not count", "diffie-hellman-group14-sha1", true},
		{"empty observed", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, fact.Satisfied(tc.observed))
		})
	}
}

func TestBoolComparatorNormalises(t *testing.T) {
	t.Parallel()

	inactive := Fact{Name: "rpcbind.service.active", Desired: "false", Comparator: CompareBool}

	require.True(t, inactive.Satisfied("inactive"))
	require.True(t, inactive.Satisfied("dead"))
	require.False(t, inactive.Satisfied("active"))

	// Unrecognised observed values never satisfy.
	require.False(t, inactive.Satisfied("activating"))
}

func TestUnknownComparatorNeverSatisfies(t *testing.T) {
	t.Parallel()

	fact := Fact{Name: "x", Desired: "x", Comparator: Comparator("fuzzy")}
	require.False(t, fact.Satisfied("x"))
}

func TestActionCorrects(t *testing.T) {
	t.Parallel()

	action := Action{Name: "mask_service", Facts: []string{"rpcbind.service.active", "rpcbind.service.enabled"}}

	require.True(t, action.Corrects("rpcbind.service.enabled"))
	require.False(t, action.Corrects("rpcbind.port_listening"))
}

func TestRunResultSuccess(t *testing.T) {
	t.Parallel()

	res := &RunResult{SatisfiedAfter: Satisfied}
	require.True(t, res.Success())

	res.Errors = append(res.Errors, errFake)
	require.False(t, res.Success())

	require.False(t, (&RunResult{SatisfiedAfter: NotSatisfied}).Success())
	require.False(t, (&RunResult{SatisfiedAfter: Indeterminate}).Success())
}

var errFake = &fakeError{}

type fakeError struct{}

func (*fakeError) Error() string { return "fake" }
