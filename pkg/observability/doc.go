/*
Package observability turns editor lifecycle events into metrics and logs.

Metrics registers Prometheus collectors and exposes LifecycleHooks that feed
them; LoggingHooks writes one structured line per event. Combine both with
domain.Chain and pass the result to the session manager.
*/
package observability
