package model

// Action is one idempotent corrective operation. Actions execute in the
// order the caller declares them; later actions may depend on earlier ones
// (stop before mask, install before unmask before start).
type Action struct {
	Name string

	// Facts names the target facts this action corrects. An action whose
	// facts are all already satisfied is skipped. An action tied to no facts
	// runs whenever the target as a whole is unsatisfied.
	Facts []string

	// Reversible marks actions the subsystem can undo during backout.
	Reversible bool

	// Destructive marks actions that lose state (package purge). In
	// interactive apply mode each destructive action is confirmed before it
	// runs; in unattended mode it runs only when Preauthorized.
	Destructive bool

	// Preauthorized records an explicit caller-side opt-in (e.g. a --purge
	// flag folded into action construction). The engine never decides this.
	Preauthorized bool

	// Activates marks actions that put previously written configuration into
	// effect (daemon reload, sysctl --system). The collaborator's config
	// check runs before an activating action; a failed check aborts the run
	// without activating.
	Activates bool
}

// Corrects reports whether the action is tied to the named fact.
func (a Action) Corrects(factName string) bool {
	for _, name := range a.Facts {
		if name == factName {
			return true
		}
	}
	return false
}
