/*
Package session hosts many editor sessions in one process.

A Manager opens an automation from the store, wraps it in an editor.Session
and hands out an opaque session ID. Every operation on one session is
serialised through a ref-counted per-key lock map; saves additionally take a
distributed lock on the automation so replicas never interleave writes.
After each committed edit, undo or redo the manager publishes the graph diff
to an optional ports.ChangePublisher.
*/
package session
