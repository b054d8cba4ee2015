package runner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// CodexProtocol decodes the Codex CLI's exec --json dialect, where every line
// is an envelope {"id": …, "msg": {"type": …}}.
//
// Raw msg types and their canonical mapping:
//
//	session_configured -> session
//	agent_reasoning    -> thought
//	agent_message      -> response
//	exec_command_begin -> action
//	task_complete      -> final
//	error              -> error
//
// Both agent_message and task_complete plausibly carry the final answer;
// only task_complete is structurally terminal, so agent_message always
// decodes as response.
type CodexProtocol struct{}

// NewCodexProtocol returns the Codex exec --json protocol.
func NewCodexProtocol() *CodexProtocol { return &CodexProtocol{} }

// Name implements Protocol.
func (p *CodexProtocol) Name() string { return "codex" }

// Command implements Protocol. "-" makes codex read the prompt from stdin.
func (p *CodexProtocol) Command(cfg core.RunnerConfig) ([]string, string) {
	args := []string{"exec", "--json", "--skip-git-repo-check"}
	if cfg.ResumeSessionID != "" {
		args = append(args, "resume", cfg.ResumeSessionID)
	}
	args = append(args, "-")
	return args, cfg.Prompt
}

type codexEnvelope struct {
	ID  string `json:"id"`
	Msg struct {
		Type             string   `json:"type"`
		SessionID        string   `json:"session_id"`
		Text             string   `json:"text"`
		Message          string   `json:"message"`
		Command          []string `json:"command"`
		LastAgentMessage string   `json:"last_agent_message"`
	} `json:"msg"`
}

// Decode implements Protocol.
func (p *CodexProtocol) Decode(line []byte) []core.RunnerEvent {
	var env codexEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil
	}

	switch env.Msg.Type {
	case "session_configured":
		if env.Msg.SessionID == "" {
			return []core.RunnerEvent{core.NewLogEvent(string(line))}
		}
		return []core.RunnerEvent{core.NewSessionEvent(env.Msg.SessionID)}
	case "agent_reasoning":
		return []core.RunnerEvent{core.NewThoughtEvent(env.Msg.Text)}
	case "agent_message":
		return []core.RunnerEvent{core.NewResponseEvent(env.Msg.Message)}
	case "exec_command_begin":
		detail := ""
		if len(env.Msg.Command) > 0 {
			b, _ := json.Marshal(env.Msg.Command)
			detail = string(b)
		}
		name := "exec"
		if len(env.Msg.Command) > 0 {
			name = env.Msg.Command[0]
		}
		return []core.RunnerEvent{core.NewActionEvent(name, detail)}
	case "task_complete":
		return []core.RunnerEvent{core.NewFinalEvent(env.Msg.LastAgentMessage)}
	case "error":
		return []core.RunnerEvent{core.NewErrorEvent(&core.RunnerError{Op: "codex", Err: fmt.Errorf("%s", strings.TrimSpace(env.Msg.Message))}, 0)}
	}
	return nil
}
