package domain

// Refinement is the outcome of one assistant round trip: the returned
// notation re-parsed into a brand-new graph, checked, and compared with the
// graph that was sent.
type Refinement struct {
	SessionID   string       `json:"session_id,omitempty"`
	Text        string       `json:"text"`
	Graph       *Graph       `json:"graph"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Report      Report       `json:"report"`
	Diff        *GraphDiff   `json:"diff,omitempty"`
}
