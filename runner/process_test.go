package runner

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// shProtocol drives /bin/sh with a fixed script and decodes a minimal
// {"type":…} dialect, which keeps the process tests independent of any real
// agent binary.
type shProtocol struct {
	script string
}

func (p shProtocol) Name() string { return "sh" }

func (p shProtocol) Command(cfg core.RunnerConfig) ([]string, string) {
	return []string{"-c", p.script}, cfg.Prompt
}

func (p shProtocol) Decode(line []byte) []core.RunnerEvent {
	var item struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(line, &item); err != nil {
		return nil
	}
	switch item.Type {
	case "session":
		return []core.RunnerEvent{core.NewSessionEvent(item.ID)}
	case "thought":
		return []core.RunnerEvent{core.NewThoughtEvent(item.Text)}
	case "response":
		return []core.RunnerEvent{core.NewResponseEvent(item.Text)}
	case "final":
		return []core.RunnerEvent{core.NewFinalEvent(item.Text)}
	}
	return nil
}

func startScript(t *testing.T, script string, cfg core.RunnerConfig) core.Handle {
	t.Helper()
	r := NewProcess(shProtocol{script: script}, func(o *Options) {
		o.Binary = "/bin/sh"
		o.GracePeriod = time.Second
	})
	h, err := r.Start(context.Background(), cfg)
	require.NoError(t, err)
	return h
}

// collect drains the handle's event channel to closure, guarded by a timeout.
func collect(t *testing.T, h core.Handle) []core.RunnerEvent {
	t.Helper()
	var events []core.RunnerEvent
	deadline := time.After(15 * time.Second)
	for {
		select {
		case ev, ok := <-h.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %d so far", len(events))
		}
	}
}

func kinds(events []core.RunnerEvent) []core.EventKind {
	out := make([]core.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestProcess_Lifecycle(t *testing.T) {
	script := `
echo '{"type":"session","id":"s-1"}'
echo '{"type":"thought","text":"looking around"}'
echo 'plain progress text'
echo '{"type":"response","text":"found it"}'
echo '{"type":"final","text":"all done"}'
`
	h := startScript(t, script, core.RunnerConfig{Prompt: "go"})
	events := collect(t, h)

	require.Equal(t, []core.EventKind{
		core.EventSession,
		core.EventThought,
		core.EventLog,
		core.EventResponse,
		core.EventFinal,
	}, kinds(events))
	assert.Equal(t, "s-1", events[0].SessionID)
	assert.Equal(t, "plain progress text", events[2].Text)
	assert.Equal(t, "all done", events[4].Text)
}

func TestProcess_UnrecognizedJSONBecomesLog(t *testing.T) {
	script := `
echo '{"type":"telemetry","tokens":12}'
echo '{"type":"final","text":"ok"}'
`
	h := startScript(t, script, core.RunnerConfig{})
	events := collect(t, h)

	require.Len(t, events, 2)
	assert.Equal(t, core.EventLog, events[0].Kind)
	assert.Contains(t, events[0].Text, "telemetry")
	assert.Equal(t, core.EventFinal, events[1].Kind)
}

func TestProcess_NonzeroExitSynthesizesError(t *testing.T) {
	script := `
echo '{"type":"thought","text":"starting"}'
echo 'something went wrong' >&2
exit 3
`
	h := startScript(t, script, core.RunnerConfig{})
	events := collect(t, h)

	require.Len(t, events, 2)
	assert.Equal(t, core.EventThought, events[0].Kind)

	last := events[1]
	assert.Equal(t, core.EventError, last.Kind)
	assert.Equal(t, 3, last.ExitCode)
	require.Error(t, last.Err)
	var rerr *core.RunnerError
	require.ErrorAs(t, last.Err, &rerr)
	assert.Equal(t, 3, rerr.ExitCode)
	assert.Contains(t, last.Err.Error(), "something went wrong")
}

func TestProcess_ExactlyOneTerminal(t *testing.T) {
	script := `
echo '{"type":"final","text":"first"}'
echo '{"type":"final","text":"second"}'
`
	h := startScript(t, script, core.RunnerConfig{})
	events := collect(t, h)

	terminals := 0
	for _, ev := range events {
		if ev.IsTerminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
	require.NotEmpty(t, events)
	assert.Equal(t, "first", events[0].Text)
}

func TestProcess_ExactlyOneSessionEvent(t *testing.T) {
	script := `
echo '{"type":"session","id":"s-1"}'
echo '{"type":"session","id":"s-2"}'
echo '{"type":"final","text":"done"}'
`
	h := startScript(t, script, core.RunnerConfig{})
	events := collect(t, h)

	sessions := 0
	for _, ev := range events {
		if ev.Kind == core.EventSession {
			sessions++
			assert.Equal(t, "s-1", ev.SessionID)
		}
	}
	assert.Equal(t, 1, sessions)
}

func TestProcess_StopIsIdempotent(t *testing.T) {
	script := `
echo '{"type":"thought","text":"working"}'
sleep 30
echo '{"type":"final","text":"never reached"}'
`
	h := startScript(t, script, core.RunnerConfig{})

	select {
	case ev := <-h.Events():
		require.Equal(t, core.EventThought, ev.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the first event")
	}

	done := make(chan struct{})
	go func() {
		h.Stop()
		h.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}
	h.Stop()

	// Emission has ceased once Stop returns; the channel only drains.
	for ev := range h.Events() {
		assert.False(t, ev.IsTerminal(), "no terminal event after Stop, got %v", ev.Kind)
	}
}

func TestProcess_TimeoutSynthesizesError(t *testing.T) {
	script := `
echo '{"type":"thought","text":"working"}'
sleep 30
`
	h := startScript(t, script, core.RunnerConfig{Timeout: 200 * time.Millisecond})
	events := collect(t, h)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, core.EventError, last.Kind)
	require.Error(t, last.Err)
	assert.Contains(t, last.Err.Error(), "timed out")
}

func TestProcess_StartFailureReturnsError(t *testing.T) {
	r := NewProcess(shProtocol{script: "true"}, func(o *Options) {
		o.Binary = "/nonexistent/agent-binary"
	})
	_, err := r.Start(context.Background(), core.RunnerConfig{})
	require.Error(t, err)
	var rerr *core.RunnerError
	assert.ErrorAs(t, err, &rerr)
}

func TestProcess_Name(t *testing.T) {
	assert.Equal(t, "claude", NewProcess(NewClaudeProtocol()).Name())
	assert.Equal(t, "codex", NewProcess(NewCodexProtocol()).Name())
}
