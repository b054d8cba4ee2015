package sink

import (
	"context"
	"sync"

	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/logging"
)

// SerializedOptions holds construction overrides for Serialized.
type SerializedOptions struct {
	// QueueSize bounds the number of pending posts per thread.
	QueueSize int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Serialized wraps another sink and guarantees FIFO delivery per
// PlatformRef: a post enqueued before another for the same ref reaches the
// delegate first, even when the two were issued from different goroutines
// and the earlier one is slow. Posts for different refs proceed
// independently.
type Serialized struct {
	delegate core.ActivitySink
	opts     SerializedOptions

	mu     sync.Mutex
	queues map[string]chan post
	closed bool
	wg     sync.WaitGroup
}

type post struct {
	ctx      context.Context
	ref      core.PlatformRef
	activity core.Activity
	result   chan error
}

// NewSerialized wraps delegate with per-ref FIFO ordering.
func NewSerialized(delegate core.ActivitySink, optFns ...func(o *SerializedOptions)) *Serialized {
	opts := SerializedOptions{
		QueueSize: 64,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Serialized{
		delegate: delegate,
		opts:     opts,
		queues:   make(map[string]chan post),
	}
}

// Post implements core.ActivitySink. It blocks until the delegate has
// processed this post or ctx is done.
func (s *Serialized) Post(ctx context.Context, ref core.PlatformRef, activity core.Activity) error {
	q, err := s.queue(ref.Key())
	if err != nil {
		return err
	}
	p := post{ctx: ctx, ref: ref, activity: activity, result: make(chan error, 1)}
	select {
	case q <- p:
	case <-ctx.Done():
		return &core.PostError{Ref: ref, Err: ctx.Err()}
	}
	select {
	case err := <-p.result:
		return err
	case <-ctx.Done():
		return &core.PostError{Ref: ref, Err: ctx.Err()}
	}
}

// Close stops all per-ref workers after their pending posts drain. Post must
// not be called after Close.
func (s *Serialized) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, q := range s.queues {
		close(q)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Serialized) queue(key string) (chan post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &core.PostError{Ref: core.PlatformRef{}, Err: context.Canceled}
	}
	q, ok := s.queues[key]
	if !ok {
		q = make(chan post, s.opts.QueueSize)
		s.queues[key] = q
		s.wg.Add(1)
		go s.work(key, q)
	}
	return q, nil
}

func (s *Serialized) work(key string, q chan post) {
	defer s.wg.Done()
	for p := range q {
		err := s.delegate.Post(p.ctx, p.ref, p.activity)
		if err != nil {
			s.opts.Logger.Warn("activity post failed", "thread", key, "kind", p.activity.Kind, "error", err)
		}
		p.result <- err
	}
}
