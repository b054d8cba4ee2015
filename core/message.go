package core

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies the originating platform of an inbound payload.
type Source string

const (
	// SourceLinear marks messages originating from Linear agent sessions.
	SourceLinear Source = "linear"
	// SourceGitHub marks messages originating from GitHub issue webhooks.
	SourceGitHub Source = "github"
	// SourceSlack marks messages originating from Slack mentions and threads.
	SourceSlack Source = "slack"
	// SourceCLI marks messages fed in pre-canonical form on the command line.
	SourceCLI Source = "cli"
)

// MessageAction is the canonical action carried by an InternalMessage.
type MessageAction string

const (
	// ActionSessionStart requests a fresh session for an unseen work item.
	ActionSessionStart MessageAction = "session-start"
	// ActionUserPrompt carries a user prompt for a new or resumed session.
	ActionUserPrompt MessageAction = "user-prompt"
	// ActionContentUpdate carries additional context for an existing session.
	ActionContentUpdate MessageAction = "content-update"
	// ActionStopSignal requests cancellation of the session.
	ActionStopSignal MessageAction = "stop-signal"
	// ActionUnassign withdraws the work item and cancels the session.
	ActionUnassign MessageAction = "unassign"
)

// PlatformRef is the opaque reply handle an ActivitySink needs to post back
// on the originating thread without re-deriving platform identifiers.
type PlatformRef struct {
	Source   Source `json:"source"`
	ThreadID string `json:"thread_id"`
	// ItemID is the issue / ticket / channel identifier as the platform
	// knows it. Some platforms need both to address a comment stream.
	ItemID string `json:"item_id,omitempty"`
}

// Key returns a stable string form used for per-ref ordering.
func (r PlatformRef) Key() string { return string(r.Source) + "/" + r.ThreadID }

// IsZero reports whether the ref carries no reply target.
func (r PlatformRef) IsZero() bool { return r.Source == "" && r.ThreadID == "" }

// InternalMessage is the canonical, tagged representation of a platform
// event. Messages are immutable once constructed; the bus never mutates a
// message after dispatch.
type InternalMessage struct {
	Source      Source        `json:"source"`
	Action      MessageAction `json:"action"`
	WorkItemID  string        `json:"work_item_id"`
	SessionKey  string        `json:"session_key"`
	PlatformRef PlatformRef   `json:"platform_ref"`
	Title       string        `json:"title,omitempty"`
	Body        string        `json:"body,omitempty"`
	Branch      string        `json:"branch,omitempty"`
	Actor       string        `json:"actor,omitempty"`
	ReceivedAt  time.Time     `json:"received_at"`
}

// SessionKeyFor derives the deterministic session key for a work item. The
// same (source, workItemID) pair always maps to the same key so repeated
// platform events land on the same session.
func SessionKeyFor(source Source, workItemID string) string {
	return string(source) + ":" + workItemID
}

// NewID generates a new unique identifier for invocations and tasks.
func NewID() string { return uuid.NewString() }
