package runner

import "github.com/ceedaragents/cyrus-sub010/core"

// Protocol decodes one agent tool's raw stdout dialect into canonical
// events. Implementations must be stateless; per-handle bookkeeping
// (session dedup, terminal dedup) is owned by the Process handle.
type Protocol interface {
	// Name identifies the agent tool.
	Name() string

	// Command renders the invocation: argument list and the text written
	// to the process's stdin.
	Command(cfg core.RunnerConfig) (args []string, stdin string)

	// Decode converts one raw JSON line into zero or more canonical
	// events. A nil result means the item type is unrecognized; the
	// caller coerces the raw line into a log event. Decode is never
	// called with invalid JSON.
	Decode(line []byte) []core.RunnerEvent
}
