package ports

import (
	"context"

	"github.com/recoverly/flowedit/pkg/domain"
)

// TemplateLoader reads automation templates from a catalogue.
type TemplateLoader interface {
	// GetTemplate returns one template.
	// Returns domain.ErrTemplateNotFound if the ID is unknown.
	GetTemplate(ctx context.Context, id string) (*domain.Template, error)

	// ListTemplates returns the IDs of every template, sorted.
	ListTemplates(ctx context.Context) ([]string, error)
}
