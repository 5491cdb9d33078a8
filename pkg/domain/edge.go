package domain

// Edge is a directed connection: when the source is satisfied, proceed to the target.
type Edge struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`

	// Anchors name the handles on each node the edge is attached to (e.g. "yes"/"no"
	// on a condition). They are opaque to the model.
	SourceAnchor string `json:"source_anchor,omitempty" yaml:"source_anchor,omitempty" mapstructure:"source_anchor"`
	TargetAnchor string `json:"target_anchor,omitempty" yaml:"target_anchor,omitempty" mapstructure:"target_anchor"`
}

// Endpoints describes a retarget request. Empty fields keep the current value.
type Endpoints struct {
	Source       string
	Target       string
	SourceAnchor string
	TargetAnchor string
}
