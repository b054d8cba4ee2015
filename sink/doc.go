// Package sink provides activity sink implementations: a serializing wrapper
// that enforces per-thread FIFO delivery, an in-memory sink for tests, and a
// writer sink that renders activity to a stream.
package sink
