package loam

// MacroMetadata is the frontmatter of a macro document.
// The document body holds the graph JSON, optionally inside a fenced code block.
type MacroMetadata struct {
	Name              string   `json:"name" mapstructure:"name"`
	ActivationPhrases []string `json:"activation_phrases" mapstructure:"activation_phrases"`
	// Actions holds, for each activation phrase, the argument object (JSON) it maps to.
	Actions   []string `json:"actions" mapstructure:"actions"`
	CreatedAt string   `json:"created_at,omitempty" mapstructure:"created_at"`
}
