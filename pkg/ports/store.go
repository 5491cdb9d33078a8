package ports

import (
	"context"

	"github.com/recoverly/flowedit/pkg/domain"
)

// AutomationStore persists automation graphs.
// Implementations must copy on Save and Load so callers never share state with the store.
type AutomationStore interface {
	// Save persists the automation under its ID, replacing any previous version.
	Save(ctx context.Context, a *domain.Automation) error

	// Load retrieves an automation by ID.
	// Returns domain.ErrAutomationNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Automation, error)

	// Delete removes an automation. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored automations.
	List(ctx context.Context) ([]string, error)
}
