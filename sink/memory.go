package sink

import (
	"context"
	"sync"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// PostRecord is one delivered activity as observed by the Memory sink.
type PostRecord struct {
	Ref      core.PlatformRef
	Activity core.Activity
}

// Memory records every post in order. Intended for tests and local runs.
type Memory struct {
	mu    sync.Mutex
	posts []PostRecord

	// Err, when set, is returned by every Post. The post is still recorded.
	Err error
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory { return &Memory{} }

// Post implements core.ActivitySink.
func (m *Memory) Post(_ context.Context, ref core.PlatformRef, activity core.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, PostRecord{Ref: ref, Activity: activity})
	if m.Err != nil {
		return &core.PostError{Ref: ref, Err: m.Err}
	}
	return nil
}

// Posts returns a copy of everything recorded so far, in delivery order.
func (m *Memory) Posts() []PostRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PostRecord, len(m.posts))
	copy(out, m.posts)
	return out
}

// ForRef returns the recorded activities for one ref, in delivery order.
func (m *Memory) ForRef(ref core.PlatformRef) []core.Activity {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Activity
	for _, p := range m.posts {
		if p.Ref.Key() == ref.Key() {
			out = append(out, p.Activity)
		}
	}
	return out
}

// Reset discards everything recorded so far.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = nil
}
