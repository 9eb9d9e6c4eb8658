// Package metrics holds the process-wide prometheus collectors. Everything is
// registered on the default registry and exposed by promhttp on /metrics.
package metrics

const namespace = "task_manager"
