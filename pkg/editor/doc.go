// Package editor binds a live automation graph to its undo/redo history.
//
// A Session is the sole writer of its graph. Every accepted Edit is applied and
// immediately snapshotted; Undo and Redo replace the live graph wholesale with
// a stored snapshot. Rejected edits leave both the graph and the history as
// they were.
//
// Edits arrive from the HTTP, MCP and CLI surfaces as generic maps and are
// decoded with DecodeEdit.
package editor
