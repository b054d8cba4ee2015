package session

import (
	"testing"
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry()
	s1, created := r.GetOrCreate("linear:CYR-1", core.Issue{ID: "CYR-1"}, core.Workspace{})
	if !created {
		t.Fatal("first sight should create")
	}
	s2, created := r.GetOrCreate("linear:CYR-1", core.Issue{ID: "CYR-1"}, core.Workspace{})
	if created {
		t.Fatal("second sight should not create")
	}
	if s1 != s2 {
		t.Error("same key must return the same session")
	}
	if _, err := r.Get("linear:CYR-2"); err == nil {
		t.Error("unknown key should error")
	}
}

func TestRegistry_EvictIdleKeepsNonTerminal(t *testing.T) {
	r := NewRegistry()
	active, _ := r.GetOrCreate("linear:CYR-1", core.Issue{ID: "CYR-1"}, core.Workspace{})
	if _, err := active.ApplyEvent(core.StateEventStart); err != nil {
		t.Fatal(err)
	}
	done, _ := r.GetOrCreate("linear:CYR-2", core.Issue{ID: "CYR-2"}, core.Workspace{})
	if _, err := done.ApplyEvent(core.StateEventCancel); err != nil {
		t.Fatal(err)
	}

	// Nothing is old enough yet; the terminal session must survive so late
	// messages can still be answered with "session ended".
	if n := r.EvictIdle(time.Hour); n != 0 {
		t.Fatalf("evicted %d, want 0", n)
	}
	if n := r.EvictIdle(-time.Second); n != 1 {
		t.Fatalf("evicted %d, want only the terminal session", n)
	}
	if _, err := r.Get("linear:CYR-1"); err != nil {
		t.Error("active session must never be evicted")
	}
	if _, err := r.Get("linear:CYR-2"); err == nil {
		t.Error("idle terminal session should be gone")
	}
}

func TestRegistry_ConcurrentDistinctKeys(t *testing.T) {
	r := NewRegistry()
	donech := make(chan struct{})
	for i := 0; i < 16; i++ {
		go func(n int) {
			defer func() { donech <- struct{}{} }()
			key := core.SessionKeyFor(core.SourceLinear, string(rune('A'+n)))
			r.GetOrCreate(key, core.Issue{}, core.Workspace{})
		}(i)
	}
	for i := 0; i < 16; i++ {
		<-donech
	}
	if r.Len() != 16 {
		t.Errorf("len = %d, want 16", r.Len())
	}
}
