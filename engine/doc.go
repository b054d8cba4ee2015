// Package engine ties the pieces together: it consumes dispatched messages
// from the bus, drives runner invocations for each session, translates
// runner events into lifecycle transitions and sink activity, and routes
// sufficiently complex work through the team orchestrator.
package engine
