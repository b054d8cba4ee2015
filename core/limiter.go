package core

import (
	"context"
	"sync"
)

// InvocationLimiter bounds the number of concurrently running runner
// invocations across the process. A max of 0 means unlimited.
type InvocationLimiter struct {
	sem   chan struct{}
	mu    sync.Mutex
	inUse int
}

// NewInvocationLimiter creates a limiter admitting at most max concurrent
// invocations. If max == 0, Acquire never blocks.
func NewInvocationLimiter(max int) *InvocationLimiter {
	l := &InvocationLimiter{}
	if max > 0 {
		l.sem = make(chan struct{}, max)
	}
	return l
}

// Acquire blocks until a slot is available or ctx is done.
func (l *InvocationLimiter) Acquire(ctx context.Context) error {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	l.mu.Lock()
	l.inUse++
	l.mu.Unlock()
	return nil
}

// Release frees a slot previously obtained by Acquire.
func (l *InvocationLimiter) Release() {
	l.mu.Lock()
	if l.inUse > 0 {
		l.inUse--
	}
	l.mu.Unlock()
	if l.sem != nil {
		select {
		case <-l.sem:
		default:
		}
	}
}

// InUse returns the number of currently held slots.
func (l *InvocationLimiter) InUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse
}
