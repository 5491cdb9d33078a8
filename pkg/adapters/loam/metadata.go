package loam

import (
	"github.com/recoverly/flowedit/pkg/domain"
)

// TemplateMetadata is the frontmatter (Markdown) or top-level object (JSON)
// of a template document. It uses "mapstructure" tags to match the YAML keys.
type TemplateMetadata struct {
	// ID overrides the file-derived ID.
	ID          string   `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" mapstructure:"tags"`

	Graph domain.Graph `json:"graph" yaml:"graph" mapstructure:"graph"`
}
