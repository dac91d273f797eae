package domain

// GraphDiff summarizes how a graph changed across a refinement round.
// Ids are regenerated on every parse, so nodes are matched by title.
type GraphDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	// Changed lists titles whose kind, description or branch targets differ.
	Changed []string `json:"changed,omitempty"`
}

// Diff compares two graphs by node signature.
// If old is nil, every node of new is reported as added.
// It returns nil when nothing changed.
func Diff(old, new *Graph) *GraphDiff {
	if new == nil {
		return nil
	}

	before := make(map[string]NodeSignature)
	if old != nil {
		for _, s := range Signature(old) {
			before[s.Title] = s
		}
	}

	diff := &GraphDiff{}
	seen := make(map[string]bool)
	for _, s := range Signature(new) {
		seen[s.Title] = true
		prev, ok := before[s.Title]
		switch {
		case !ok:
			diff.Added = append(diff.Added, s.Title)
		case prev != s:
			diff.Changed = append(diff.Changed, s.Title)
		}
	}

	if old != nil {
		for _, s := range Signature(old) {
			if !seen[s.Title] {
				diff.Removed = append(diff.Removed, s.Title)
			}
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any change.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
