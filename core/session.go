package core

import (
	"sync"
	"time"
)

// Issue is the minimal identity of the tracked work item a session serves.
type Issue struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Branch string `json:"branch,omitempty"`
}

// Workspace describes where the agent process runs.
type Workspace struct {
	Path       string `json:"path"`
	IsWorktree bool   `json:"is_worktree"`
}

// Role classifies a session history entry.
type Role string

const (
	// RoleUser marks input from the requesting human.
	RoleUser Role = "user"
	// RoleAssistant marks agent output.
	RoleAssistant Role = "assistant"
	// RoleSystem marks orchestrator-generated entries.
	RoleSystem Role = "system"
	// RoleResult marks the terminal outcome entry of an invocation.
	RoleResult Role = "result"
)

// Entry is one append-only session history record. Used for resumption
// context and for audit trails delivered to the activity sink.
type Entry struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	ToolName   string    `json:"tool_name,omitempty"`
	ToolUseID  string    `json:"tool_use_id,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	IsError    bool      `json:"is_error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Session is the live unit of orchestrated work for one tracked issue. It is
// safe for concurrent access.
//
// Contract:
//   - Status changes only through ApplyEvent, which routes the lifecycle
//     state machine (see Apply)
//   - Entries returns a defensive copy to avoid external mutation
//   - History is append-only
//   - Clone performs deep copies for safe divergence
type Session struct {
	Key       string    `json:"key"`
	Issue     Issue     `json:"issue"`
	Workspace Workspace `json:"workspace"`
	Created   time.Time `json:"created"`

	mu              sync.RWMutex
	status          Status
	runnerSessionID string
	platformRef     PlatformRef
	entries         []Entry
	updated         time.Time
}

// NewSession creates a Pending session for the given key and issue identity.
func NewSession(key string, issue Issue, workspace Workspace) *Session {
	now := time.Now().UTC()
	return &Session{
		Key:       key,
		Issue:     issue,
		Workspace: workspace,
		Created:   now,
		status:    StatusPending,
		updated:   now,
	}
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// ApplyEvent feeds ev to the lifecycle state machine. On success the new
// status is stored and returned; on an invalid transition the status is
// unchanged and the error is returned.
func (s *Session) ApplyEvent(ev StateEvent) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Apply(s.status, ev)
	if err != nil {
		return s.status, err
	}
	s.status = next
	s.updated = time.Now().UTC()
	return next, nil
}

// RunnerSessionID returns the underlying agent tool's own session/resume
// token, or empty if none has been reported yet.
func (s *Session) RunnerSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runnerSessionID
}

// SetRunnerSessionID records the resume token reported by the runner.
func (s *Session) SetRunnerSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runnerSessionID = id
	s.updated = time.Now().UTC()
}

// PlatformRef returns the reply handle of the thread that opened the session.
func (s *Session) PlatformRef() PlatformRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.platformRef
}

// SetPlatformRef records the reply handle for sink posting.
func (s *Session) SetPlatformRef(ref PlatformRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.platformRef = ref
}

// AddEntry appends one history record, updating the modification timestamp.
func (s *Session) AddEntry(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.entries = append(s.entries, e)
	s.updated = time.Now().UTC()
}

// Entries returns a defensive copy of the full history.
func (s *Session) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// History returns up to limit trailing conversational entries (user and
// assistant roles only) suitable for prompt assembly. limit <= 0 means all.
func (s *Session) History(limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Role == RoleUser || e.Role == RoleAssistant {
			conv = append(conv, e)
		}
	}
	if limit > 0 && len(conv) > limit {
		conv = conv[len(conv)-limit:]
	}
	return conv
}

// Updated returns the time of the last mutation.
func (s *Session) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		Key:             s.Key,
		Issue:           s.Issue,
		Workspace:       s.Workspace,
		Created:         s.Created,
		status:          s.status,
		runnerSessionID: s.runnerSessionID,
		platformRef:     s.platformRef,
		entries:         make([]Entry, len(s.entries)),
		updated:         s.updated,
	}
	copy(clone.entries, s.entries)
	return clone
}
