package bus

import (
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// LinearTranslator converts Linear agent-session webhook payloads. Linear
// delivers agent work through AgentSessionEvent envelopes: "created" opens a
// session on an issue, "prompted" carries a user activity for an existing
// one. A prompted activity whose signal field says "stop" becomes a
// stop-signal message.
type LinearTranslator struct{}

// NewLinearTranslator returns the Linear payload translator.
func NewLinearTranslator() *LinearTranslator { return &LinearTranslator{} }

// Source implements Translator.
func (t *LinearTranslator) Source() core.Source { return core.SourceLinear }

// CanTranslate probes for the Linear agent-session envelope shape.
func (t *LinearTranslator) CanTranslate(raw map[string]any) bool {
	typ, ok := stringField(raw, "type")
	return ok && typ == "AgentSessionEvent"
}

// Translate implements Translator.
func (t *LinearTranslator) Translate(raw map[string]any, _ Context) (core.InternalMessage, error) {
	sessionID, ok := stringField(raw, "agentSession", "id")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceLinear, "agentSession.id")
	}
	issueID, ok := stringField(raw, "agentSession", "issue", "identifier")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceLinear, "agentSession.issue.identifier")
	}
	action, ok := stringField(raw, "action")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceLinear, "action")
	}

	msg := core.InternalMessage{
		Source:     core.SourceLinear,
		WorkItemID: issueID,
		SessionKey: core.SessionKeyFor(core.SourceLinear, issueID),
		PlatformRef: core.PlatformRef{
			Source:   core.SourceLinear,
			ThreadID: sessionID,
			ItemID:   issueID,
		},
		ReceivedAt: time.Now().UTC(),
	}
	msg.Title, _ = stringField(raw, "agentSession", "issue", "title")
	msg.Branch, _ = stringField(raw, "agentSession", "issue", "branchName")
	msg.Actor, _ = stringField(raw, "agentSession", "creator", "name")

	switch action {
	case "created":
		msg.Action = core.ActionSessionStart
		msg.Body, _ = stringField(raw, "agentSession", "issue", "description")
	case "prompted":
		body, ok := stringField(raw, "agentActivity", "content", "body")
		if !ok {
			return core.InternalMessage{}, missing(core.SourceLinear, "agentActivity.content.body")
		}
		msg.Body = body
		if signal, ok := stringField(raw, "agentActivity", "signal"); ok && signal == "stop" {
			msg.Action = core.ActionStopSignal
		} else {
			msg.Action = core.ActionUserPrompt
		}
	default:
		return core.InternalMessage{}, &core.TranslationError{Source: core.SourceLinear, Reason: core.ReasonUnknownAction, Field: action}
	}
	return msg, nil
}
