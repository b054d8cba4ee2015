package core

import (
	"context"
	"time"
)

// RunnerConfig is the structured input for one runner invocation.
type RunnerConfig struct {
	// Prompt is the assembled prompt text handed to the agent process.
	Prompt string
	// WorkingDir is the workspace directory the process runs in.
	WorkingDir string
	// AllowedTools restricts which tools the agent may invoke, if the
	// underlying tool supports such a restriction.
	AllowedTools []string
	// ResumeSessionID resumes the tool's own prior session when non-empty.
	ResumeSessionID string
	// Env is appended to the process environment.
	Env []string
	// Timeout bounds the wait for a terminal event. Zero means the
	// runner's default applies.
	Timeout time.Duration
}

// Handle is one live runner invocation.
//
// Semantics and guarantees:
//   - Events returns a lazy, finite sequence closed after exactly one
//     terminal event (final or error), never both. Only an explicit Stop
//     may close the sequence without a terminal event.
//   - Exactly one session event is emitted per handle, as soon as the
//     underlying tool reports its own session identifier.
//   - The sequence is not restartable; resume by starting a new handle
//     with RunnerConfig.ResumeSessionID.
//   - Stop is idempotent. It guarantees the underlying process receives a
//     termination signal and that no further events are emitted after it
//     returns, force-releasing resources after a bounded grace window.
type Handle interface {
	Events() <-chan RunnerEvent
	Stop()
}

// Runner drives an external agent process through the normalized event
// protocol. Implementations are selected by explicit capability, one per
// agent tool.
type Runner interface {
	// Name identifies the agent tool this runner drives.
	Name() string
	// Start launches one invocation. Startup failures (missing binary,
	// bad working directory) are returned immediately; failures after
	// startup surface as an error event on the handle.
	Start(ctx context.Context, cfg RunnerConfig) (Handle, error)
}
