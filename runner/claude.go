package runner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ceedaragents/cyrus-sub010/core"
)

// ClaudeProtocol decodes the Claude Code CLI's stream-json dialect.
//
// Raw item kinds and their canonical mapping:
//
//	system/init      -> session (carries session_id)
//	assistant        -> thought (thinking blocks), action (tool_use blocks),
//	                    response (text blocks)
//	user             -> log (tool results echoed back)
//	result           -> final or error
//
// Both an assistant text block and a result item plausibly carry "the final
// answer"; only the result item is structurally terminal, so assistant text
// always decodes as response and never as final.
type ClaudeProtocol struct{}

// NewClaudeProtocol returns the Claude Code stream-json protocol.
func NewClaudeProtocol() *ClaudeProtocol { return &ClaudeProtocol{} }

// Name implements Protocol.
func (p *ClaudeProtocol) Name() string { return "claude" }

// Command implements Protocol. The prompt travels on stdin.
func (p *ClaudeProtocol) Command(cfg core.RunnerConfig) ([]string, string) {
	args := []string{"-p", "--verbose", "--output-format", "stream-json"}
	if cfg.ResumeSessionID != "" {
		args = append(args, "--resume", cfg.ResumeSessionID)
	}
	if len(cfg.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(cfg.AllowedTools, ","))
	}
	return args, cfg.Prompt
}

type claudeItem struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
	Result    string `json:"result"`
	IsError   bool   `json:"is_error"`
	Message   struct {
		Content []claudeBlock `json:"content"`
	} `json:"message"`
}

type claudeBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text"`
	Thinking string          `json:"thinking"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
}

// Decode implements Protocol.
func (p *ClaudeProtocol) Decode(line []byte) []core.RunnerEvent {
	var item claudeItem
	if err := json.Unmarshal(line, &item); err != nil {
		return nil
	}

	switch item.Type {
	case "system":
		if item.Subtype == "init" && item.SessionID != "" {
			return []core.RunnerEvent{core.NewSessionEvent(item.SessionID)}
		}
		return []core.RunnerEvent{core.NewLogEvent(string(line))}
	case "assistant":
		var events []core.RunnerEvent
		for _, block := range item.Message.Content {
			switch block.Type {
			case "thinking":
				if block.Thinking != "" {
					events = append(events, core.NewThoughtEvent(block.Thinking))
				}
			case "tool_use":
				events = append(events, core.NewActionEvent(block.Name, string(block.Input)))
			case "text":
				if block.Text != "" {
					events = append(events, core.NewResponseEvent(block.Text))
				}
			}
		}
		if events == nil {
			events = []core.RunnerEvent{core.NewLogEvent(string(line))}
		}
		return events
	case "user":
		// Tool results echoed back to the agent; preserved, not surfaced.
		return []core.RunnerEvent{core.NewLogEvent(string(line))}
	case "result":
		if item.IsError || (item.Subtype != "" && item.Subtype != "success") {
			cause := item.Result
			if cause == "" {
				cause = item.Subtype
			}
			return []core.RunnerEvent{core.NewErrorEvent(&core.RunnerError{Op: "claude", Err: fmt.Errorf("%s", cause)}, 0)}
		}
		return []core.RunnerEvent{core.NewFinalEvent(item.Result)}
	}
	return nil
}
