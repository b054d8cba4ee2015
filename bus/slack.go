package bus

import (
	"strings"
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// SlackTranslator converts Slack Events API payloads. An app mention opens a
// session keyed on its thread; replies inside the thread prompt it. A bare
// "stop" reply becomes a stop-signal.
type SlackTranslator struct{}

// NewSlackTranslator returns the Slack payload translator.
func NewSlackTranslator() *SlackTranslator { return &SlackTranslator{} }

// Source implements Translator.
func (t *SlackTranslator) Source() core.Source { return core.SourceSlack }

// CanTranslate probes for the Slack event_callback envelope.
func (t *SlackTranslator) CanTranslate(raw map[string]any) bool {
	typ, ok := stringField(raw, "type")
	if !ok || typ != "event_callback" {
		return false
	}
	_, hasEvent := raw["event"].(map[string]any)
	return hasEvent
}

// Translate implements Translator.
func (t *SlackTranslator) Translate(raw map[string]any, _ Context) (core.InternalMessage, error) {
	eventType, ok := stringField(raw, "event", "type")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceSlack, "event.type")
	}
	channel, ok := stringField(raw, "event", "channel")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceSlack, "event.channel")
	}
	ts, ok := stringField(raw, "event", "ts")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceSlack, "event.ts")
	}
	text, ok := stringField(raw, "event", "text")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceSlack, "event.text")
	}

	// The thread root anchors the session; a top-level mention is its own root.
	threadTS, threaded := stringField(raw, "event", "thread_ts")
	if !threaded {
		threadTS = ts
	}
	workItemID := channel + "/" + threadTS

	msg := core.InternalMessage{
		Source:     core.SourceSlack,
		WorkItemID: workItemID,
		SessionKey: core.SessionKeyFor(core.SourceSlack, workItemID),
		PlatformRef: core.PlatformRef{
			Source:   core.SourceSlack,
			ThreadID: threadTS,
			ItemID:   channel,
		},
		Body:       text,
		ReceivedAt: time.Now().UTC(),
	}
	msg.Actor, _ = stringField(raw, "event", "user")

	switch {
	case eventType == "app_mention" && !threaded:
		msg.Action = core.ActionSessionStart
		msg.Title = firstLine(text)
	case strings.EqualFold(strings.TrimSpace(stripMention(text)), "stop"):
		msg.Action = core.ActionStopSignal
	case eventType == "app_mention" || eventType == "message":
		msg.Action = core.ActionUserPrompt
	default:
		return core.InternalMessage{}, &core.TranslationError{Source: core.SourceSlack, Reason: core.ReasonUnknownAction, Field: eventType}
	}
	return msg, nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(stripMention(s))
}

// stripMention drops a leading <@U…> bot mention token.
func stripMention(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") {
		if idx := strings.IndexByte(s, '>'); idx >= 0 {
			return strings.TrimSpace(s[idx+1:])
		}
	}
	return s
}
