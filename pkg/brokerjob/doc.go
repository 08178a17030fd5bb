// Package brokerjob bridges AMQP deliveries into jobperform invocations.
// Process is a bgserver.AsyncProcess: one delivery becomes one
// jobperform.Job, dispatched through an injected jobperform.Performer
// and acknowledged or rejected based on the outcome. The wire format of
// the payload (JSON-encoded Job) is this package's own concern.
package brokerjob
