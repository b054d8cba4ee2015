// Package team decomposes complex work into a dependency-ordered task graph
// and executes it as a team of runner invocations. A deterministic complexity
// score gates whether an issue gets a team at all; the orchestrator runs the
// graph in waves, never starting a task before everything it is blocked by
// has succeeded.
package team
