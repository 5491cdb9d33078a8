/*
Package dsl provides a fluent builder for constructing automation graphs in Go.

It is an alternative to authoring templates as YAML or JSON documents, useful for
built-in templates and tests. The builder replays every node and edge through the
graph operations, so a built graph obeys the same invariants as one edited
interactively.

Example usage:

	b := dsl.New()

	b.Trigger("t1", domain.TagOverdueInvoice).Days(5).Go("a1")

	b.Action("a1", "send-message").
		At(240, 0).
		Label("Send reminder").
		Template("overdue-reminder")

	graph, err := b.Build()
*/
package dsl
