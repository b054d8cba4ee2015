package bus

import (
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// CLITranslator accepts pre-canonical payloads fed on the command line or by
// tests: {"source": "cli", "action": …, "work_item_id": …, "body": …}. It
// only trusts payloads whose transport context is marked trusted.
type CLITranslator struct{}

// NewCLITranslator returns the CLI payload translator.
func NewCLITranslator() *CLITranslator { return &CLITranslator{} }

// Source implements Translator.
func (t *CLITranslator) Source() core.Source { return core.SourceCLI }

// CanTranslate probes for the pre-canonical CLI shape.
func (t *CLITranslator) CanTranslate(raw map[string]any) bool {
	src, ok := stringField(raw, "source")
	return ok && src == string(core.SourceCLI)
}

// Translate implements Translator.
func (t *CLITranslator) Translate(raw map[string]any, tctx Context) (core.InternalMessage, error) {
	if tctx.VerificationMode != VerifiedTrusted {
		return core.InternalMessage{}, &core.TranslationError{Source: core.SourceCLI, Reason: "untrusted-transport"}
	}
	workItemID, ok := stringField(raw, "work_item_id")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceCLI, "work_item_id")
	}
	action, ok := stringField(raw, "action")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceCLI, "action")
	}

	var msgAction core.MessageAction
	switch core.MessageAction(action) {
	case core.ActionSessionStart, core.ActionUserPrompt, core.ActionContentUpdate,
		core.ActionStopSignal, core.ActionUnassign:
		msgAction = core.MessageAction(action)
	default:
		return core.InternalMessage{}, &core.TranslationError{Source: core.SourceCLI, Reason: core.ReasonUnknownAction, Field: action}
	}

	msg := core.InternalMessage{
		Source:     core.SourceCLI,
		Action:     msgAction,
		WorkItemID: workItemID,
		SessionKey: core.SessionKeyFor(core.SourceCLI, workItemID),
		PlatformRef: core.PlatformRef{
			Source:   core.SourceCLI,
			ThreadID: workItemID,
		},
		ReceivedAt: time.Now().UTC(),
	}
	msg.Title, _ = stringField(raw, "title")
	msg.Body, _ = stringField(raw, "body")
	msg.Branch, _ = stringField(raw, "branch")
	msg.Actor, _ = stringField(raw, "actor")

	if (msgAction == core.ActionUserPrompt || msgAction == core.ActionContentUpdate) && msg.Body == "" {
		return core.InternalMessage{}, missing(core.SourceCLI, "body")
	}
	return msg, nil
}
