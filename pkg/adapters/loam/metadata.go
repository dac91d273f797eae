package loam

// FlowMetadata is the frontmatter of a library flow document.
// The document body holds the flow in line notation.
type FlowMetadata struct {
	ID          string   `json:"id" mapstructure:"id"`
	Title       string   `json:"title" mapstructure:"title"`
	Description string   `json:"description" mapstructure:"description"`
	Tags        []string `json:"tags,omitempty" mapstructure:"tags"`
	// Anchors asks the parser to add Start/End nodes for this flow.
	Anchors bool `json:"anchors,omitempty" mapstructure:"anchors"`
}
