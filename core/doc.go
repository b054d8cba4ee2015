// Package core provides the foundational domain types, interfaces and
// contracts used by Cyrus. It defines the core abstractions for:
//
//   - InternalMessage (canonical, platform-neutral inbound work)
//   - Session (the live unit of orchestrated work for one tracked issue)
//   - The session lifecycle state machine (Apply, CanResume, IsTerminal)
//   - RunnerEvent (the closed canonical event set emitted by runner adapters)
//   - Runner / Handle (uniform control and event protocol over agent processes)
//   - ActivitySink (platform-agnostic posting of user-visible activity)
//   - The shared error taxonomy (translation, transition, runner, post, task)
//
// The package intentionally keeps implementation concerns (translators,
// subprocess management, sinks, orchestration) out of scope, exposing small
// interfaces so the surrounding packages can be swapped or extended without
// touching the domain contracts.
package core
