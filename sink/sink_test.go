package sink

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceedaragents/cyrus-sub010/core"
)

func ref(thread string) core.PlatformRef {
	return core.PlatformRef{Source: core.SourceLinear, ThreadID: thread, ItemID: "item-1"}
}

// gateSink blocks inside Post until released, so tests can hold an earlier
// post in flight while a later one is already enqueued.
type gateSink struct {
	inner *Memory
	gate  chan struct{}
	once  sync.Once
}

func (g *gateSink) Post(ctx context.Context, r core.PlatformRef, a core.Activity) error {
	var first bool
	g.once.Do(func() { first = true })
	if first {
		<-g.gate
	}
	return g.inner.Post(ctx, r, a)
}

func TestSerialized_FIFOPerRef(t *testing.T) {
	mem := NewMemory()
	gs := &gateSink{inner: mem, gate: make(chan struct{})}
	s := NewSerialized(gs)
	defer s.Close()

	r := ref("thread-1")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Post(context.Background(), r, core.Activity{Kind: core.ActivityThought, Body: "A"}))
	}()
	// Give A time to occupy the worker before B is enqueued.
	time.Sleep(50 * time.Millisecond)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Post(context.Background(), r, core.Activity{Kind: core.ActivityResponse, Body: "B"}))
	}()
	time.Sleep(50 * time.Millisecond)
	close(gs.gate)
	wg.Wait()

	got := mem.ForRef(r)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Body)
	assert.Equal(t, "B", got[1].Body)
}

func TestSerialized_IndependentRefs(t *testing.T) {
	mem := NewMemory()
	gs := &gateSink{inner: mem, gate: make(chan struct{})}
	s := NewSerialized(gs)
	defer s.Close()

	slow := ref("thread-slow")
	fast := ref("thread-fast")

	done := make(chan struct{})
	go func() {
		_ = s.Post(context.Background(), slow, core.Activity{Kind: core.ActivityThought, Body: "held"})
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)

	// The fast thread is not behind the held one.
	require.NoError(t, s.Post(context.Background(), fast, core.Activity{Kind: core.ActivityFinal, Body: "quick"}))
	require.Len(t, mem.ForRef(fast), 1)

	close(gs.gate)
	<-done
	require.Len(t, mem.ForRef(slow), 1)
}

func TestSerialized_DelegateErrorSurfaced(t *testing.T) {
	mem := NewMemory()
	mem.Err = errors.New("platform rejected the comment")
	s := NewSerialized(mem)
	defer s.Close()

	err := s.Post(context.Background(), ref("thread-1"), core.Activity{Kind: core.ActivityError, Body: "boom"})
	require.Error(t, err)
	var perr *core.PostError
	assert.ErrorAs(t, err, &perr)
}

func TestMemory_RecordsInOrder(t *testing.T) {
	mem := NewMemory()
	r := ref("thread-1")
	for _, body := range []string{"one", "two", "three"} {
		require.NoError(t, mem.Post(context.Background(), r, core.Activity{Kind: core.ActivityResponse, Body: body}))
	}
	got := mem.ForRef(r)
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Body)
	assert.Equal(t, "three", got[2].Body)

	mem.Reset()
	assert.Empty(t, mem.Posts())
}

func TestWriter_FormatsLine(t *testing.T) {
	var sb strings.Builder
	s := NewWriter(&sb)
	require.NoError(t, s.Post(context.Background(), ref("thread-1"), core.Activity{Kind: core.ActivityFinal, Body: "all done"}))
	assert.Equal(t, "[final] linear/thread-1: all done\n", sb.String())
}
