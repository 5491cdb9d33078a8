/*
Package flowedit is the editing core of a debt-collection automation builder.

An automation is a directed graph: trigger nodes (overdue invoice, broken
agreement, no contact) start it, condition nodes branch it and action nodes do
the work. flowedit owns the graph model, the trigger taxonomy and an editor
session with a bounded undo/redo history. Evaluating automations against live
business records is the job of a downstream execution engine.

# Concept

Every edit produces a new graph value. The session pushes a snapshot of each
committed graph onto its history, so undo and redo are pointer moves over
immutable snapshots. Rejected edits leave both the graph and the history
untouched.

# Key Features

  - Consistent graphs: an edge never references a missing node.
  - Bounded history: the oldest snapshots are evicted past the capacity (50 by default).
  - Hexagonal Architecture: stores (memory, file, Redis), template catalogues and the execution engine are ports.
  - Surfaces: HTTP API with live diffs, MCP tools and an interactive CLI.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/recoverly/flowedit"
		"github.com/recoverly/flowedit/pkg/editor"
	)

	func main() {
		eng, err := flowedit.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		info, err := eng.Open(ctx, flowedit.OpenRequest{
			AutomationID: "auto-1",
			TenantID:     "tenant-1",
			TemplateID:   "overdue-reminder",
		})
		if err != nil {
			log.Fatal(err)
		}

		sessions := eng.Sessions()
		if _, err := sessions.Apply(ctx, info.SessionID, editor.SetLabel("a1", "Gentle nudge")); err != nil {
			log.Fatal(err)
		}
		if _, err := sessions.Save(ctx, info.SessionID); err != nil {
			log.Fatal(err)
		}
	}
*/
package flowedit
