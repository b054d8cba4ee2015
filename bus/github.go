package bus

import (
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// GitHubTranslator converts GitHub issue webhook payloads: assignment opens a
// session, issue comments prompt it, unassignment withdraws it.
type GitHubTranslator struct{}

// NewGitHubTranslator returns the GitHub payload translator.
func NewGitHubTranslator() *GitHubTranslator { return &GitHubTranslator{} }

// Source implements Translator.
func (t *GitHubTranslator) Source() core.Source { return core.SourceGitHub }

// CanTranslate probes for the GitHub issue webhook shape: an issue object
// plus a repository object, which no other shipped platform carries.
func (t *GitHubTranslator) CanTranslate(raw map[string]any) bool {
	_, hasIssue := raw["issue"].(map[string]any)
	_, hasRepo := raw["repository"].(map[string]any)
	return hasIssue && hasRepo
}

// Translate implements Translator.
func (t *GitHubTranslator) Translate(raw map[string]any, _ Context) (core.InternalMessage, error) {
	number, ok := numberField(raw, "issue", "number")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceGitHub, "issue.number")
	}
	repo, ok := stringField(raw, "repository", "full_name")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceGitHub, "repository.full_name")
	}
	action, ok := stringField(raw, "action")
	if !ok {
		return core.InternalMessage{}, missing(core.SourceGitHub, "action")
	}

	workItemID := repo + "#" + number
	msg := core.InternalMessage{
		Source:     core.SourceGitHub,
		WorkItemID: workItemID,
		SessionKey: core.SessionKeyFor(core.SourceGitHub, workItemID),
		PlatformRef: core.PlatformRef{
			Source:   core.SourceGitHub,
			ThreadID: workItemID,
			ItemID:   number,
		},
		ReceivedAt: time.Now().UTC(),
	}
	msg.Title, _ = stringField(raw, "issue", "title")
	msg.Actor, _ = stringField(raw, "sender", "login")

	switch action {
	case "assigned":
		msg.Action = core.ActionSessionStart
		msg.Body, _ = stringField(raw, "issue", "body")
	case "created": // issue_comment
		body, ok := stringField(raw, "comment", "body")
		if !ok {
			return core.InternalMessage{}, missing(core.SourceGitHub, "comment.body")
		}
		msg.Action = core.ActionUserPrompt
		msg.Body = body
	case "edited":
		body, ok := stringField(raw, "comment", "body")
		if !ok {
			return core.InternalMessage{}, missing(core.SourceGitHub, "comment.body")
		}
		msg.Action = core.ActionContentUpdate
		msg.Body = body
	case "unassigned":
		msg.Action = core.ActionUnassign
	default:
		return core.InternalMessage{}, &core.TranslationError{Source: core.SourceGitHub, Reason: core.ReasonUnknownAction, Field: action}
	}
	return msg, nil
}
