package core

// Status is the lifecycle state of a session.
type Status string

const (
	// StatusPending is the initial state before the first Start.
	StatusPending Status = "pending"
	// StatusActive means a runner invocation is in flight.
	StatusActive Status = "active"
	// StatusWaitingOnUser means the agent asked a question and is blocked on a reply.
	StatusWaitingOnUser Status = "waiting-on-user"
	// StatusCompleted is terminal: the agent finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed is terminal: the agent errored out.
	StatusFailed Status = "failed"
	// StatusCancelled is terminal: the session was cancelled.
	StatusCancelled Status = "cancelled"
)

// StateEvent is an input to the session state machine.
type StateEvent string

const (
	// StateEventStart begins work on a pending session.
	StateEventStart StateEvent = "start"
	// StateEventAgentProgress reports ongoing work without a state change.
	StateEventAgentProgress StateEvent = "agent-progress"
	// StateEventAgentAsksUser means the agent is blocked on a user answer.
	StateEventAgentAsksUser StateEvent = "agent-asks-user"
	// StateEventUserReplies resumes an agent waiting on the user.
	StateEventUserReplies StateEvent = "user-replies"
	// StateEventAgentFinishes completes the session successfully.
	StateEventAgentFinishes StateEvent = "agent-finishes"
	// StateEventAgentErrors fails the session.
	StateEventAgentErrors StateEvent = "agent-errors"
	// StateEventCancel cancels the session. Idempotent on Cancelled.
	StateEventCancel StateEvent = "cancel"
)

// Apply is the pure, total transition function of the session lifecycle. It
// returns the successor status, or an *InvalidTransitionError for every
// (status, event) pair outside the explicit table. It never silently ignores
// an unexpected event and never mutates anything.
//
// Cancel is special-cased: valid from any non-terminal state, and a no-op
// success on an already-Cancelled session because cancellation requests may
// race with natural completion.
func Apply(status Status, ev StateEvent) (Status, error) {
	switch ev {
	case StateEventStart:
		if status == StatusPending {
			return StatusActive, nil
		}
	case StateEventAgentProgress:
		if status == StatusActive {
			return StatusActive, nil
		}
	case StateEventAgentAsksUser:
		if status == StatusActive {
			return StatusWaitingOnUser, nil
		}
	case StateEventUserReplies:
		if status == StatusWaitingOnUser {
			return StatusActive, nil
		}
	case StateEventAgentFinishes:
		if status == StatusActive || status == StatusWaitingOnUser {
			return StatusCompleted, nil
		}
	case StateEventAgentErrors:
		if status == StatusActive || status == StatusWaitingOnUser {
			return StatusFailed, nil
		}
	case StateEventCancel:
		if status == StatusCancelled {
			return StatusCancelled, nil
		}
		if !IsTerminal(status) {
			return StatusCancelled, nil
		}
	}
	return status, &InvalidTransitionError{Status: status, Event: ev}
}

// CanResume reports whether a resumable runner handle can still exist for the
// status. Only Active and WaitingOnUser sessions are resumable.
func CanResume(s Status) bool {
	return s == StatusActive || s == StatusWaitingOnUser
}

// IsTerminal reports whether the status is one of the three terminal states.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}
