package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/ports"
)

// TemplateLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TemplateLoader.
// want maps every template ID the loader holds to its expected name.
func TemplateLoaderContractTest(t *testing.T, loader ports.TemplateLoader, want map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetTemplate_Success", func(t *testing.T) {
		for id, name := range want {
			tmpl, err := loader.GetTemplate(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting template %s: %v", id, err)
			}
			if tmpl.ID != id {
				t.Errorf("template id = %q, want %q", tmpl.ID, id)
			}
			if tmpl.Name != name {
				t.Errorf("template %s name = %q, want %q", id, tmpl.Name, name)
			}
			if err := tmpl.Graph.Validate(); err != nil {
				t.Errorf("template %s has an invalid graph: %v", id, err)
			}
		}
	})

	t.Run("GetTemplate_NotFound", func(t *testing.T) {
		_, err := loader.GetTemplate(ctx, "non-existent-template")
		if !errors.Is(err, domain.ErrTemplateNotFound) {
			t.Errorf("expected ErrTemplateNotFound, got %v", err)
		}
	})

	t.Run("ListTemplates", func(t *testing.T) {
		ids, err := loader.ListTemplates(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing templates: %v", err)
		}
		if len(ids) != len(want) {
			t.Errorf("expected %d templates, got %d", len(want), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range want {
			if !lookup[id] {
				t.Errorf("template %s missing from list", id)
			}
		}
		for i := 1; i < len(ids); i++ {
			if ids[i-1] > ids[i] {
				t.Errorf("ids not sorted: %v", ids)
				break
			}
		}
	})
}
