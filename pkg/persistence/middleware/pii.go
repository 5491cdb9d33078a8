package middleware

import (
	"context"
	"regexp"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/recoverly/flowedit/pkg/schema"
)

// Mask replaces redacted parameter values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.AutomationStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks node parameters whose names
// match any pattern (e.g. a debtor phone number pinned on an action) before they
// reach the store. The caller's automation is never modified.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.AutomationStore) ports.AutomationStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, a *domain.Automation) error {
	cloned := a.Clone()
	for i := range cloned.Graph.Nodes {
		n := &cloned.Graph.Nodes[i]
		maskMap(n.Parameters, m.patterns, domain.ParameterSchema(n.Kind))
	}
	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Automation, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// maskMap masks matching keys in place. Keys declared by the node's parameter
// schema are typed, not free text, and are left alone so the stored graph still
// validates on load.
func maskMap(m map[string]any, patterns []*regexp.Regexp, declared schema.Schema) {
	for k, v := range m {
		if _, typed := declared[k]; typed {
			continue
		}
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				masked = true
				break
			}
		}
		if sub, ok := v.(map[string]any); ok && !masked {
			maskMap(sub, patterns, nil)
		}
	}
}
