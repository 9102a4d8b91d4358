package model

import (
	"strings"
)

// Comparator selects the strategy used to judge an observed value against a
// fact's desired value.
type Comparator string

const (
	// CompareExact requires byte-for-byte agreement with the desired value.
	// Used for multi-value config lines (algorithm lists): a near-match with
	// one extra token is NOT satisfied. Operators changing an allow-list must
	// update the applied config and the check definition together.
	CompareExact Comparator = "exact"
	// CompareNotContains requires that the desired token does NOT appear in
	// the observed value, treated as a comma/whitespace separated list.
	CompareNotContains Comparator = "not_contains"
	// CompareBool requires boolean equality after normalisation
	// ("yes"/"active"/"enabled"/"1" are true, their counterparts false).
	CompareBool Comparator = "bool"
)

// Fact is one named, comparable piece of system state: the value the live
// system should report, and how to compare what it does report.
type Fact struct {
	Name       string
	Desired    string
	Comparator Comparator
}

// Satisfied judges an observed value against the fact's desired value.
func (f Fact) Satisfied(observed string) bool {
	switch f.Comparator {
	case CompareExact:
		return observed == f.Desired
	case CompareNotContains:
		for _, token := range splitList(observed) {
			if token == f.Desired {
				return false
			}
		}
		return true
	case CompareBool:
		obs, okObs := parseBoolish(observed)
		want, okWant := parseBoolish(f.Desired)
		return okObs && okWant && obs == want
	default:
		return false
	}
}

// FactStatus is the tri-state outcome of judging one fact.
type FactStatus string

const (
	// FactSatisfied indicates the observed value matched the desired value.
	FactSatisfied FactStatus = "satisfied"
	// FactUnsatisfied indicates the observed value did not match.
	FactUnsatisfied FactStatus = "unsatisfied"
	// FactIndeterminate indicates the fact could not be observed. It never
	// counts as satisfied, but does not by itself fail the judgment.
	FactIndeterminate FactStatus = "indeterminate"
)

// FactReport records the outcome of observing and judging one fact during a run.
type FactReport struct {
	Name     string
	Desired  string
	Observed string
	Status   FactStatus
	Err      error
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func parseBoolish(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1", "active", "enabled":
		return true, true
	case "false", "no", "off", "0", "inactive", "disabled", "masked", "failed", "dead", "not-found":
		return false, true
	default:
		return false, false
	}
}
