package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// Writer renders each activity as one line on an io.Writer. Used by the CLI
// front end, where the originating thread is a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a sink that writes to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Post implements core.ActivitySink.
func (s *Writer) Post(_ context.Context, ref core.PlatformRef, activity core.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "[%s] %s: %s\n", activity.Kind, ref.Key(), activity.Body); err != nil {
		return &core.PostError{Ref: ref, Err: err}
	}
	return nil
}
