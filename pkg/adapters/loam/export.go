package loam

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/loam"
	"github.com/recoverly/flowedit/pkg/domain"
)

// Export writes templates into dir as Markdown documents: the graph goes to
// the frontmatter and the description becomes the body. The result can be
// read back with Open and edited by hand.
func Export(ctx context.Context, dir string, templates []domain.Template) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	// No versioning: plain file generation.
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to initialize loam: %w", err)
	}
	typed := loam.NewTypedRepository[TemplateMetadata](repo)

	for _, t := range templates {
		if err := t.Graph.Validate(); err != nil {
			return fmt.Errorf("template %s: %w", t.ID, err)
		}
		err := typed.Save(ctx, &loam.DocumentModel[TemplateMetadata]{
			ID:      t.ID + ".md",
			Content: t.Description,
			Data: TemplateMetadata{
				Name:  t.Name,
				Graph: t.Graph,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to write template %s: %w", t.ID, err)
		}
	}
	return nil
}
