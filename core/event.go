package core

import "time"

// EventKind enumerates the closed canonical set of runner events. Adapters in
// the runner package are the only producers; everything an agent process
// emits is normalized into one of these kinds, never dropped.
type EventKind string

const (
	// EventThought is intermediate reasoning the agent surfaces while working.
	EventThought EventKind = "thought"
	// EventAction records a tool or command invocation by the agent.
	EventAction EventKind = "action"
	// EventResponse is a user-directed message that is not yet the final answer.
	EventResponse EventKind = "response"
	// EventFinal is the single terminal success event of a handle.
	EventFinal EventKind = "final"
	// EventLog carries raw output that did not decode as a recognized item.
	EventLog EventKind = "log"
	// EventError is the single terminal failure event of a handle.
	EventError EventKind = "error"
	// EventSession reports the underlying tool's own session identifier,
	// emitted exactly once per handle as soon as it is known.
	EventSession EventKind = "session"
)

// RunnerEvent is the canonical, tagged event produced by a runner protocol
// adapter. Only the fields relevant to Kind are populated. Events are
// immutable after construction.
type RunnerEvent struct {
	Kind         EventKind `json:"kind"`
	Text         string    `json:"text,omitempty"`
	ActionName   string    `json:"action_name,omitempty"`
	ActionDetail string    `json:"action_detail,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	Err          error     `json:"-"`
	ExitCode     int       `json:"exit_code,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewThoughtEvent creates a thought event with the given text.
func NewThoughtEvent(text string) RunnerEvent {
	return RunnerEvent{Kind: EventThought, Text: text, Timestamp: time.Now().UTC()}
}

// NewActionEvent records the agent invoking a named tool or command.
func NewActionEvent(name, detail string) RunnerEvent {
	return RunnerEvent{Kind: EventAction, ActionName: name, ActionDetail: detail, Timestamp: time.Now().UTC()}
}

// NewResponseEvent creates a user-directed response event.
func NewResponseEvent(text string) RunnerEvent {
	return RunnerEvent{Kind: EventResponse, Text: text, Timestamp: time.Now().UTC()}
}

// NewFinalEvent creates the terminal success event carrying the final answer.
func NewFinalEvent(text string) RunnerEvent {
	return RunnerEvent{Kind: EventFinal, Text: text, Timestamp: time.Now().UTC()}
}

// NewLogEvent preserves a raw line that did not decode as a recognized item.
func NewLogEvent(text string) RunnerEvent {
	return RunnerEvent{Kind: EventLog, Text: text, Timestamp: time.Now().UTC()}
}

// NewErrorEvent creates the terminal failure event. exitCode is zero unless
// the failure was a process exit.
func NewErrorEvent(err error, exitCode int) RunnerEvent {
	ev := RunnerEvent{Kind: EventError, Err: err, ExitCode: exitCode, Timestamp: time.Now().UTC()}
	if err != nil {
		ev.Text = err.Error()
	}
	return ev
}

// NewSessionEvent reports the underlying tool's session/resume identifier.
func NewSessionEvent(id string) RunnerEvent {
	return RunnerEvent{Kind: EventSession, SessionID: id, Timestamp: time.Now().UTC()}
}

// IsTerminal reports whether the event ends the handle's event stream.
// Exactly one terminal event is observable per handle.
func (e RunnerEvent) IsTerminal() bool {
	return e.Kind == EventFinal || e.Kind == EventError
}
