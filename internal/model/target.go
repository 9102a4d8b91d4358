package model

// Target is an ordered collection of facts that together define "hardened"
// (or "restored") for one subsystem. Order does not affect satisfaction but
// fixes reporting order: first observed, first reported.
type Target struct {
	Name  string
	Facts []Fact
}

// FactNames returns the fact names in declaration order.
func (t Target) FactNames() []string {
	names := make([]string, 0, len(t.Facts))
	for _, f := range t.Facts {
		names = append(names, f.Name)
	}
	return names
}
