package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/recoverly/flowedit/pkg/domain"
)

// Loader adapts a Loam repository of template documents to ports.TemplateLoader.
// A Markdown body, when present, becomes the template description.
type Loader struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initialises a read-only, strict Loam repository at dir.
// Strict mode makes JSON and YAML agree on numeric types (json.Number).
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid template path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

// index maps template IDs to the document IDs Loam resolves them by.
func (l *Loader) index(ctx context.Context) (map[string]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	index := make(map[string]string, len(docs))
	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		index[id] = trimExtension(doc.ID)
	}
	return index, nil
}

// GetTemplate loads one template and validates its graph.
func (l *Loader) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	docID, ok := index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
	}

	doc, err := l.Repo.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	t := &domain.Template{
		ID:          id,
		Name:        doc.Data.Name,
		Description: doc.Data.Description,
		Graph:       doc.Data.Graph.Normalized(),
	}
	if t.Name == "" {
		t.Name = id
	}
	if body := strings.TrimSpace(doc.Content); body != "" && t.Description == "" {
		t.Description = body
	}
	if err := t.Graph.Validate(); err != nil {
		return nil, fmt.Errorf("template %s: %w", id, err)
	}
	return t, nil
}

// ListTemplates returns template IDs with file extensions stripped, sorted.
func (l *Loader) ListTemplates(ctx context.Context) ([]string, error) {
	index, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
