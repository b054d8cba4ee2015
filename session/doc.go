// Package session houses the process-wide session registry. The Session
// struct and its lifecycle contract live in the core package to centralize
// domain types; this package only provides the arena keyed by sessionKey.
//
// Entries are created solely on dispatch of a session-start or user-prompt
// message for an unseen key, and removed only by the eviction pass once a
// session is terminal and idle. Late-arriving messages for a terminal session
// still find the entry and can be answered with "session ended" semantics.
package session
