package ports

import (
	"context"

	"github.com/recoverly/flowedit/pkg/domain"
)

// ExecutionEngine is the downstream consumer of saved automations.
// It evaluates trigger parameters against live business records and fires
// actions; none of that happens in this module. The graph handed over is the
// whole contract between the two.
type ExecutionEngine interface {
	Deploy(ctx context.Context, a *domain.Automation) error
}

// ChangePublisher receives the diff produced by every committed edit, undo or redo.
// Publish must not block the editing goroutine.
type ChangePublisher interface {
	Publish(diff *domain.GraphDiff)
}
