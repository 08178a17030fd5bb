// Package storage provides a concrete, swappable implementation of the
// storage handle jobperform.PerformContext carries opaquely. A
// Connection wraps a pooled database/sql connection and participates
// in jobperform's pipeline solely through its Close method; nothing in
// jobperform or bgserver inspects its contents.
package storage
