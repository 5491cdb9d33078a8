package history

import (
	"slices"

	"github.com/recoverly/flowedit/pkg/domain"
)

// DefaultCapacity is the number of snapshots kept when no capacity is configured.
const DefaultCapacity = 50

// Option configures a History.
type Option func(*History)

// WithCapacity bounds the number of stored snapshots. Values below 1 keep the default.
func WithCapacity(n int) Option {
	return func(h *History) {
		if n >= 1 {
			h.capacity = n
		}
	}
}

// History is a bounded linear undo/redo stack of graph snapshots.
// It is not safe for concurrent use.
type History struct {
	snapshots []domain.Graph
	pointer   int
	capacity  int
}

// New creates a history whose only snapshot is a copy of initial.
func New(initial domain.Graph, opts ...Option) *History {
	h := &History{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(h)
	}
	h.snapshots = make([]domain.Graph, 1, min(h.capacity, 8))
	h.snapshots[0] = initial.Clone()
	return h
}

// Push records a new snapshot. Any redo branch is discarded and, once the stack
// is full, the oldest snapshot is evicted. The pointer ends on the new snapshot.
func (h *History) Push(g domain.Graph) {
	if h.pointer < len(h.snapshots)-1 {
		clear(h.snapshots[h.pointer+1:])
		h.snapshots = h.snapshots[:h.pointer+1]
	}

	h.snapshots = append(h.snapshots, g.Clone())
	if over := len(h.snapshots) - h.capacity; over > 0 {
		h.snapshots = slices.Delete(h.snapshots, 0, over)
	}
	h.pointer = len(h.snapshots) - 1
}

// Undo steps back one snapshot and returns a copy of it.
// At the oldest snapshot it returns (Graph{}, false) and changes nothing.
func (h *History) Undo() (domain.Graph, bool) {
	if !h.CanUndo() {
		return domain.Graph{}, false
	}
	h.pointer--
	return h.snapshots[h.pointer].Clone(), true
}

// Redo steps forward one snapshot and returns a copy of it.
// At the newest snapshot it returns (Graph{}, false) and changes nothing.
func (h *History) Redo() (domain.Graph, bool) {
	if !h.CanRedo() {
		return domain.Graph{}, false
	}
	h.pointer++
	return h.snapshots[h.pointer].Clone(), true
}

func (h *History) CanUndo() bool { return h.pointer > 0 }

func (h *History) CanRedo() bool { return h.pointer < len(h.snapshots)-1 }

// Current returns a copy of the snapshot under the pointer.
func (h *History) Current() domain.Graph { return h.snapshots[h.pointer].Clone() }

// Len is the number of stored snapshots, always between 1 and Capacity.
func (h *History) Len() int { return len(h.snapshots) }

// Position is the zero-based index of the current snapshot.
func (h *History) Position() int { return h.pointer }

func (h *History) Capacity() int { return h.capacity }
