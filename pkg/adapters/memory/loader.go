package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/recoverly/flowedit/pkg/domain"
)

// Loader implements ports.TemplateLoader over an in-memory catalogue.
type Loader struct {
	templates map[string]domain.Template
}

// NewLoader creates a catalogue from domain templates.
// Template graphs are validated so a broken built-in fails at startup.
func NewLoader(templates ...domain.Template) (*Loader, error) {
	l := &Loader{templates: make(map[string]domain.Template, len(templates))}
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template missing ID")
		}
		if _, dup := l.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template %q", t.ID)
		}
		if err := t.Graph.Validate(); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
		t.Graph = t.Graph.Clone()
		l.templates[t.ID] = t
	}
	return l, nil
}

// NewLoaderFromJSON decodes each raw JSON document into a template keyed by its map key.
// This keeps test fixtures close to what a file catalogue holds.
func NewLoaderFromJSON(data map[string]string) (*Loader, error) {
	templates := make([]domain.Template, 0, len(data))
	for id, raw := range data {
		var t domain.Template
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to decode template %s: %w", id, err)
		}
		t.ID = id
		t.Graph = t.Graph.Normalized()
		templates = append(templates, t)
	}
	return NewLoader(templates...)
}

// GetTemplate returns a copy of one template.
func (l *Loader) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	t, ok := l.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}
	t.Graph = t.Graph.Clone()
	return &t, nil
}

// ListTemplates returns all template IDs, sorted.
func (l *Loader) ListTemplates(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
