package core

import "fmt"

// Translation failure reasons attached to TranslationError.
const (
	// ReasonMissingField marks a payload lacking a required field.
	ReasonMissingField = "missing-field"
	// ReasonUnrecognizedPayload marks a payload no translator claims.
	ReasonUnrecognizedPayload = "unrecognized-payload"
	// ReasonUnknownAction marks a payload whose action cannot be derived.
	ReasonUnknownAction = "unknown-action"
)

// TranslationError reports a malformed or incomplete inbound payload. The bus
// drops the payload with a logged diagnostic; translation failures are never
// retried.
type TranslationError struct {
	Source Source
	Reason string
	Field  string
}

func (e *TranslationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("translate %s payload: %s %q", e.Source, e.Reason, e.Field)
	}
	return fmt.Sprintf("translate %s payload: %s", e.Source, e.Reason)
}

// InvalidTransitionError reports a (status, event) pair outside the explicit
// transition table. It indicates an ordering bug or a legitimate race between
// user and agent events; the session state is left unchanged.
type InvalidTransitionError struct {
	Status Status
	Event  StateEvent
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: event %q in status %q", e.Event, e.Status)
}

// RunnerError reports a subprocess crash, timeout or protocol violation. The
// engine surfaces it to the session as an AgentErrors transition.
type RunnerError struct {
	Op       string
	ExitCode int
	Err      error
}

func (e *RunnerError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("runner %s: exit code %d: %v", e.Op, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("runner %s: %v", e.Op, e.Err)
}

func (e *RunnerError) Unwrap() error { return e.Err }

// PostError reports an activity sink failure. The orchestrator logs and
// continues; losing one status update must not abort the session.
type PostError struct {
	Ref PlatformRef
	Err error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post activity to %s: %v", e.Ref.Key(), e.Err)
}

func (e *PostError) Unwrap() error { return e.Err }

// TaskBlockedError marks a team task permanently blocked because one of its
// dependencies failed. Blocked tasks are never attempted.
type TaskBlockedError struct {
	TaskID       string
	DependencyID string
}

func (e *TaskBlockedError) Error() string {
	return fmt.Sprintf("task %q blocked: dependency %q failed", e.TaskID, e.DependencyID)
}
