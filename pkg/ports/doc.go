/*
Package ports defines the driven ports (interfaces) of the flowedit editor.

These interfaces decouple the editing core from storage backends, template
catalogues, change feeds and the downstream execution engine.

# Key Interfaces

  - AutomationStore: Persists and loads automations (memory, file, Redis).
  - TemplateLoader: Reads starting graphs from a template catalogue (Loam, memory).
  - DistributedLocker: Serialises saves of one automation across replicas.
  - ExecutionEngine: Receives every saved automation. Evaluation happens there.
  - ChangePublisher: Fans graph diffs out to live subscribers (SSE).
*/
package ports
