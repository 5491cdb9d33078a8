package history

import (
	"fmt"
	"testing"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphN returns a graph holding n nodes, so snapshots are distinguishable by size.
func graphN(n int) domain.Graph {
	var g domain.Graph
	for i := range n {
		g.Nodes = append(g.Nodes, domain.Node{ID: fmt.Sprintf("n%d", i), Kind: "action-send-message"})
	}
	return g
}

func TestHistory_NewHasSingleSnapshot(t *testing.T) {
	h := New(graphN(1))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Position())
	assert.Equal(t, DefaultCapacity, h.Capacity())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	g, ok := h.Undo()
	assert.False(t, ok)
	assert.Empty(t, g.Nodes)
	g, ok = h.Redo()
	assert.False(t, ok)
	assert.Empty(t, g.Nodes)
}

func TestHistory_UndoRoundTripWithinCapacity(t *testing.T) {
	for _, pushes := range []int{1, 10, DefaultCapacity - 1} {
		t.Run(fmt.Sprintf("%d pushes", pushes), func(t *testing.T) {
			h := New(graphN(0))
			for i := 1; i <= pushes; i++ {
				h.Push(graphN(i))
			}

			for i := pushes - 1; i >= 0; i-- {
				g, ok := h.Undo()
				require.True(t, ok)
				assert.Len(t, g.Nodes, i)
			}
			assert.False(t, h.CanUndo())
			assert.True(t, h.Current().Equal(graphN(0)))

			for i := 1; i <= pushes; i++ {
				g, ok := h.Redo()
				require.True(t, ok)
				assert.Len(t, g.Nodes, i)
			}
			assert.False(t, h.CanRedo())
		})
	}
}

// A full stack holds the initial snapshot plus capacity-1 edits. The edit that
// fills the last slot evicts the initial snapshot.
func TestHistory_PushesEqualToCapacity(t *testing.T) {
	h := New(graphN(0))
	for i := 1; i <= DefaultCapacity; i++ {
		h.Push(graphN(i))
	}
	require.Equal(t, DefaultCapacity, h.Len())

	undos := 0
	for h.CanUndo() {
		_, ok := h.Undo()
		require.True(t, ok)
		undos++
	}
	assert.Equal(t, DefaultCapacity-1, undos)
	assert.Len(t, h.Current().Nodes, 1, "initial snapshot is no longer reachable")
	assert.False(t, h.Current().Equal(graphN(0)))
}

func TestHistory_BoundedBeyondCapacity(t *testing.T) {
	h := New(graphN(0))
	const pushes = 70
	for i := 1; i <= pushes; i++ {
		h.Push(graphN(i))
	}

	require.Equal(t, DefaultCapacity, h.Len())
	assert.Equal(t, DefaultCapacity-1, h.Position())

	undos := 0
	for h.CanUndo() {
		_, ok := h.Undo()
		require.True(t, ok)
		undos++
	}
	assert.Equal(t, DefaultCapacity-1, undos)
	// The oldest retained snapshot is the state after push 70-49 = 21.
	assert.Len(t, h.Current().Nodes, pushes-DefaultCapacity+1)
}

func TestHistory_WithCapacity(t *testing.T) {
	h := New(graphN(0), WithCapacity(3))
	for i := 1; i <= 5; i++ {
		h.Push(graphN(i))
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 3, h.Capacity())

	assert.Equal(t, DefaultCapacity, New(graphN(0), WithCapacity(0)).Capacity())
	assert.Equal(t, DefaultCapacity, New(graphN(0), WithCapacity(-4)).Capacity())

	single := New(graphN(0), WithCapacity(1))
	single.Push(graphN(1))
	assert.Equal(t, 1, single.Len())
	assert.False(t, single.CanUndo())
	assert.Len(t, single.Current().Nodes, 1)
}

func TestHistory_UndoRedoIdempotent(t *testing.T) {
	h := New(graphN(0))
	h.Push(graphN(1))
	h.Push(graphN(2))

	before := h.Current()
	_, ok := h.Undo()
	require.True(t, ok)
	after, ok := h.Redo()
	require.True(t, ok)
	assert.True(t, before.Equal(after))
	assert.Equal(t, 2, h.Position())
}

func TestHistory_PushAfterUndoClearsRedo(t *testing.T) {
	h := New(graphN(0))
	h.Push(graphN(1))
	h.Push(graphN(2))
	h.Undo()
	h.Undo()
	require.True(t, h.CanRedo())

	h.Push(graphN(7))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Position())

	g, ok := h.Redo()
	assert.False(t, ok)
	assert.Empty(t, g.Nodes)
}

func TestHistory_SnapshotsAreCopies(t *testing.T) {
	g := domain.Graph{Nodes: []domain.Node{{
		ID: "t1", Kind: "overdue-invoice", Parameters: map[string]any{"days": 5},
	}}}
	h := New(g)

	// Mutating the pushed value must not reach the stored snapshot.
	g.Nodes[0].Parameters["days"] = 99
	assert.Equal(t, 5, h.Current().Nodes[0].Parameters["days"])

	h.Push(graphN(1))
	undone, ok := h.Undo()
	require.True(t, ok)

	// Mutating a returned snapshot must not reach the stored one either.
	undone.Nodes[0].Parameters["days"] = 42
	assert.Equal(t, 5, h.Current().Nodes[0].Parameters["days"])
}

func TestHistory_PointerAlwaysValid(t *testing.T) {
	h := New(graphN(0), WithCapacity(4))
	ops := "ppuupppppuuuuuurrrrrrpu"
	for _, op := range ops {
		switch op {
		case 'p':
			h.Push(graphN(h.Len()))
		case 'u':
			h.Undo()
		case 'r':
			h.Redo()
		}
		require.GreaterOrEqual(t, h.Len(), 1)
		require.LessOrEqual(t, h.Len(), h.Capacity())
		require.GreaterOrEqual(t, h.Position(), 0)
		require.Less(t, h.Position(), h.Len())
	}
}
