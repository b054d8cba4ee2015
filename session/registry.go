package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// Registry is the process-wide session arena keyed by sessionKey. It is safe
// for concurrent access. Sessions themselves guard their own state; the
// registry only guards the map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*core.Session)}
}

// Get returns the live session for key, or an error if none exists.
func (r *Registry) Get(key string) (*core.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	if !ok {
		return nil, fmt.Errorf("session %q not found", key)
	}
	return s, nil
}

// GetOrCreate returns the session for key, creating a Pending one from the
// issue identity on first sight. The boolean reports whether a session was
// created by this call.
func (r *Registry) GetOrCreate(key string, issue core.Issue, workspace core.Workspace) (*core.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		return s, false
	}
	s := core.NewSession(key, issue, workspace)
	r.sessions[key] = s
	return s, true
}

// Remove deletes the session for key, if present.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Keys returns a snapshot of the registered session keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.sessions))
	for k := range r.sessions {
		keys = append(keys, k)
	}
	return keys
}

// EvictIdle removes sessions that are terminal and have been idle longer
// than olderThan. Non-terminal sessions are never evicted regardless of age.
// It returns the number of evicted sessions.
func (r *Registry) EvictIdle(olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for key, s := range r.sessions {
		if core.IsTerminal(s.Status()) && s.Updated().Before(cutoff) {
			delete(r.sessions, key)
			evicted++
		}
	}
	return evicted
}
