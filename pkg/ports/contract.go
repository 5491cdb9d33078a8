package ports

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractAutomation builds the fixture used by RunAutomationStoreContract.
func contractAutomation(id string) *domain.Automation {
	return &domain.Automation{
		ID:       id,
		TenantID: "tenant-contract",
		Name:     "Overdue reminders",
		Graph: domain.Graph{
			Nodes: []domain.Node{
				{ID: "t1", Kind: "overdue-invoice", Position: domain.Position{X: 0, Y: 0}, Parameters: map[string]any{"days": 5}},
				{ID: "a1", Kind: "action-send-message", Position: domain.Position{X: 240, Y: 0}, Label: "Remind"},
			},
			Edges: []domain.Edge{{ID: "e1", Source: "t1", Target: "a1", SourceAnchor: "out"}},
		},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// RunAutomationStoreContract runs a suite of tests to verify that an AutomationStore
// implementation adheres to the defined interface contract.
func RunAutomationStoreContract(t *testing.T, store AutomationStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		want := contractAutomation(id)
		require.NoError(t, store.Save(ctx, want), "Save should not return error")

		got, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.TenantID, got.TenantID)
		assert.Equal(t, want.Name, got.Name)
		assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
		assert.True(t, want.Graph.Equal(got.Graph), "graph should survive a round trip")

		// Integer parameters come back as int regardless of the encoding.
		n, ok := got.Graph.Node("t1")
		require.True(t, ok)
		assert.Equal(t, 5, n.Parameters["days"])
	})

	t.Run("Copies Are Isolated", func(t *testing.T) {
		a := contractAutomation(id + "-iso")
		require.NoError(t, store.Save(ctx, a))
		defer func() { _ = store.Delete(ctx, a.ID) }()

		a.Graph.Nodes[0].Parameters["days"] = 99

		got, err := store.Load(ctx, a.ID)
		require.NoError(t, err)
		got.Graph.Nodes = nil

		again, err := store.Load(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, again.Graph.Nodes, 2)
		n, _ := again.Graph.Node("t1")
		assert.Equal(t, 5, n.Parameters["days"])
	})

	t.Run("Overwrite", func(t *testing.T) {
		a := contractAutomation(id)
		a.Name = "Renamed"
		a.Graph.Edges = nil
		require.NoError(t, store.Save(ctx, a))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.Empty(t, got.Graph.Edges)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrAutomationNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractAutomation(id)))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrAutomationNotFound, "Load after Delete should return ErrAutomationNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, contractAutomation(id1)))
		require.NoError(t, store.Save(ctx, contractAutomation(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
