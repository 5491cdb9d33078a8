/*
Package domain contains the automation graph model shared by every other package.

It is kept free of I/O and persistence, following the Hexagonal Architecture used
throughout flowedit. Graph mutations are pure: each one returns a new Graph and never
touches its receiver, so a rejected edit cannot leave a half-applied graph behind.

# Key Entities

  - Node: a trigger, condition or action vertex with layout position and parameters.
  - Edge: a directed "proceed to" connection between two nodes.
  - Graph: the unit of persistence and of undo/redo snapshots.
  - Trigger: the closed trigger taxonomy with an explicit unknown variant.
  - Automation: a persisted graph owned by exactly one tenant.
*/
package domain
