package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceedaragents/cyrus-sub010/core"
)

func linearCreatedPayload() map[string]any {
	return map[string]any{
		"type":   "AgentSessionEvent",
		"action": "created",
		"agentSession": map[string]any{
			"id": "as-123",
			"issue": map[string]any{
				"identifier":  "CYR-7",
				"title":       "Fix flaky upload",
				"description": "Uploads fail intermittently.",
				"branchName":  "cyr-7-fix-flaky-upload",
			},
			"creator": map[string]any{"name": "ana"},
		},
	}
}

func githubCommentPayload() map[string]any {
	return map[string]any{
		"action":     "created",
		"issue":      map[string]any{"number": float64(42), "title": "Crash on boot"},
		"comment":    map[string]any{"body": "please look into this"},
		"repository": map[string]any{"full_name": "acme/widgets"},
		"sender":     map[string]any{"login": "bob"},
	}
}

func slackMentionPayload() map[string]any {
	return map[string]any{
		"type": "event_callback",
		"event": map[string]any{
			"type":    "app_mention",
			"channel": "C01",
			"ts":      "1700000000.000100",
			"text":    "<@U99> investigate the login timeout",
			"user":    "U42",
		},
	}
}

func cliPayload(action string) map[string]any {
	return map[string]any{
		"source":       "cli",
		"action":       action,
		"work_item_id": "local-1",
		"body":         "do the thing",
	}
}

func TestCapabilityProbesAreMutuallyExclusive(t *testing.T) {
	translators := []Translator{
		NewLinearTranslator(),
		NewGitHubTranslator(),
		NewSlackTranslator(),
		NewCLITranslator(),
	}
	payloads := map[core.Source]map[string]any{
		core.SourceLinear: linearCreatedPayload(),
		core.SourceGitHub: githubCommentPayload(),
		core.SourceSlack:  slackMentionPayload(),
		core.SourceCLI:    cliPayload("user-prompt"),
	}
	for want, payload := range payloads {
		var claimed []core.Source
		for _, tr := range translators {
			if tr.CanTranslate(payload) {
				claimed = append(claimed, tr.Source())
			}
		}
		assert.Equal(t, []core.Source{want}, claimed, "payload for %s", want)
	}
}

func TestLinearTranslator(t *testing.T) {
	tr := NewLinearTranslator()

	msg, err := tr.Translate(linearCreatedPayload(), Context{VerificationMode: VerifiedWebhook})
	require.NoError(t, err)
	assert.Equal(t, core.ActionSessionStart, msg.Action)
	assert.Equal(t, "CYR-7", msg.WorkItemID)
	assert.Equal(t, "linear:CYR-7", msg.SessionKey)
	assert.Equal(t, "as-123", msg.PlatformRef.ThreadID)
	assert.Equal(t, "cyr-7-fix-flaky-upload", msg.Branch)
	assert.Equal(t, "ana", msg.Actor)

	prompted := linearCreatedPayload()
	prompted["action"] = "prompted"
	prompted["agentActivity"] = map[string]any{"content": map[string]any{"body": "try again"}}
	msg, err = tr.Translate(prompted, Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionUserPrompt, msg.Action)
	assert.Equal(t, "try again", msg.Body)

	stop := linearCreatedPayload()
	stop["action"] = "prompted"
	stop["agentActivity"] = map[string]any{"content": map[string]any{"body": "x"}, "signal": "stop"}
	msg, err = tr.Translate(stop, Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionStopSignal, msg.Action)
}

func TestLinearTranslator_MissingField(t *testing.T) {
	tr := NewLinearTranslator()
	payload := linearCreatedPayload()
	delete(payload["agentSession"].(map[string]any), "id")

	_, err := tr.Translate(payload, Context{})
	require.Error(t, err)
	te, ok := err.(*core.TranslationError)
	require.True(t, ok, "error type %T", err)
	assert.Equal(t, core.ReasonMissingField, te.Reason)
	assert.Equal(t, "agentSession.id", te.Field)
}

func TestGitHubTranslator(t *testing.T) {
	tr := NewGitHubTranslator()

	msg, err := tr.Translate(githubCommentPayload(), Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionUserPrompt, msg.Action)
	assert.Equal(t, "acme/widgets#42", msg.WorkItemID)
	assert.Equal(t, "github:acme/widgets#42", msg.SessionKey)
	assert.Equal(t, "please look into this", msg.Body)

	assigned := githubCommentPayload()
	assigned["action"] = "assigned"
	msg, err = tr.Translate(assigned, Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionSessionStart, msg.Action)

	unassigned := githubCommentPayload()
	unassigned["action"] = "unassigned"
	msg, err = tr.Translate(unassigned, Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionUnassign, msg.Action)
}

func TestSlackTranslator(t *testing.T) {
	tr := NewSlackTranslator()

	msg, err := tr.Translate(slackMentionPayload(), Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionSessionStart, msg.Action)
	assert.Equal(t, "C01/1700000000.000100", msg.WorkItemID)
	assert.Equal(t, "investigate the login timeout", msg.Title)

	reply := slackMentionPayload()
	reply["event"].(map[string]any)["thread_ts"] = "1700000000.000100"
	reply["event"].(map[string]any)["ts"] = "1700000000.000200"
	reply["event"].(map[string]any)["type"] = "message"
	reply["event"].(map[string]any)["text"] = "any update?"
	msg, err = tr.Translate(reply, Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionUserPrompt, msg.Action)
	// Replies land on the same session as the root mention.
	assert.Equal(t, "slack:C01/1700000000.000100", msg.SessionKey)

	stop := slackMentionPayload()
	stop["event"].(map[string]any)["thread_ts"] = "1700000000.000100"
	stop["event"].(map[string]any)["text"] = "<@U99> stop"
	msg, err = tr.Translate(stop, Context{})
	require.NoError(t, err)
	assert.Equal(t, core.ActionStopSignal, msg.Action)
}

func TestCLITranslator_RequiresTrustedTransport(t *testing.T) {
	tr := NewCLITranslator()
	_, err := tr.Translate(cliPayload("user-prompt"), Context{VerificationMode: VerifiedWebhook})
	require.Error(t, err)

	msg, err := tr.Translate(cliPayload("user-prompt"), Context{VerificationMode: VerifiedTrusted})
	require.NoError(t, err)
	assert.Equal(t, "cli:local-1", msg.SessionKey)
	assert.Equal(t, "do the thing", msg.Body)
}
