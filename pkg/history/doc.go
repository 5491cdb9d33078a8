// Package history implements the bounded linear undo/redo stack of an editor session.
//
// A History holds a non-empty sequence of graph snapshots and a pointer to the
// current one. Pushing after an undo discards the redo branch; pushing beyond
// capacity evicts the oldest snapshot. Snapshots are deep copies in both
// directions, so callers can never alias stored state.
package history
