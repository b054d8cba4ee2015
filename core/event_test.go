package core

import (
	"context"
	"errors"
	"testing"
)

func TestRunnerEvent_IsTerminal(t *testing.T) {
	if !NewFinalEvent("done").IsTerminal() {
		t.Error("final should be terminal")
	}
	if !NewErrorEvent(errors.New("boom"), 1).IsTerminal() {
		t.Error("error should be terminal")
	}
	for _, ev := range []RunnerEvent{NewThoughtEvent("t"), NewActionEvent("bash", "ls"), NewResponseEvent("r"), NewLogEvent("l"), NewSessionEvent("s")} {
		if ev.IsTerminal() {
			t.Errorf("%s should not be terminal", ev.Kind)
		}
	}
}

func TestInvocationLimiter_Bounds(t *testing.T) {
	l := NewInvocationLimiter(1)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Fatal("second acquire should block until cancelled")
	}
	l.Release()
	if l.InUse() != 0 {
		t.Errorf("in use = %d, want 0", l.InUse())
	}
}

func TestInvocationLimiter_UnlimitedNeverBlocks(t *testing.T) {
	l := NewInvocationLimiter(0)
	for i := 0; i < 64; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if l.InUse() != 64 {
		t.Errorf("in use = %d, want 64", l.InUse())
	}
}
