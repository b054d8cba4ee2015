package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ceedaragents/cyrus-sub010/classify"
	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/internal/util"
	"github.com/ceedaragents/cyrus-sub010/team"
)

// invocation tracks one live unit of background work for a session, either
// a single runner handle or a whole team execution.
type invocation struct {
	id        string
	cancel    context.CancelFunc
	ctx       context.Context
	cancelled atomic.Bool

	mu     sync.Mutex
	handle core.Handle
}

func (inv *invocation) setHandle(h core.Handle) {
	inv.mu.Lock()
	inv.handle = h
	inv.mu.Unlock()
}

// stop marks the invocation cancelled so late events are discarded, then
// signals the subprocess.
func (inv *invocation) stop() {
	inv.cancelled.Store(true)
	inv.cancel()
	inv.mu.Lock()
	h := inv.handle
	inv.mu.Unlock()
	if h != nil {
		h.Stop()
	}
}

const freshPrompt = `You are working on {{.source}} issue {{.issue_id}}{{if .title}}: {{.title}}{{end}}.
{{if .branch}}Work on branch {{.branch}}.
{{end}}{{if .history}}
## Conversation so far

{{.history}}
{{end}}
## Request

{{.body}}`

// begin hands freshly started work to a background goroutine. Classification
// may call out to an LLM provider, so it must not run on the dispatch path.
func (e *Engine) begin(sess *core.Session, msg core.InternalMessage) {
	inv := e.track(sess.Key)
	go e.route(inv, sess, msg)
}

// route classifies the work and dispatches it: team-eligible issues go
// through the orchestrator, everything else gets a single invocation.
func (e *Engine) route(inv *invocation, sess *core.Session, msg core.InternalMessage) {
	class, err := e.classify.Classify(inv.ctx, sess.Issue.Title, msg.Body)
	if err != nil {
		e.logger.Warn("classification failed, treating as code", "session_key", sess.Key, "error", err)
		class = classify.ClassCode
	}
	score := e.scorer.Score(class, msg.Body)
	e.logger.Info("work classified",
		"session_key", sess.Key, "classification", string(class), "score", score.Score, "use_team", score.UseTeam)

	if score.UseTeam {
		if g, err := team.BuildGraph(class, sess.Issue.Title, msg.Body, score.SuggestedTeamSize); err == nil {
			e.runTeam(inv, sess, g, score)
			return
		} else {
			e.logger.Warn("team decomposition failed, falling back to a single invocation",
				"session_key", sess.Key, "error", err)
		}
	}
	e.run(inv, sess, e.assemblePrompt(sess, msg))
}

// resume continues a session whose agent was waiting on the user.
func (e *Engine) resume(sess *core.Session, msg core.InternalMessage) {
	prompt := msg.Body
	if sess.RunnerSessionID() == "" {
		// No tool-side context to resume; rebuild the full prompt.
		prompt = e.assemblePrompt(sess, msg)
	}
	e.startInvocation(sess, prompt)
}

// assemblePrompt renders issue identity, trailing history and the new body
// into one prompt. The body itself passes through unmodified.
func (e *Engine) assemblePrompt(sess *core.Session, msg core.InternalMessage) string {
	var history strings.Builder
	for _, entry := range sess.History(e.config.HistoryLimit) {
		if entry.Content == msg.Body {
			continue
		}
		fmt.Fprintf(&history, "%s: %s\n", entry.Role, entry.Content)
	}
	prompt, err := util.RenderTemplate(freshPrompt, map[string]any{
		"source":   string(msg.Source),
		"issue_id": sess.Issue.ID,
		"title":    sess.Issue.Title,
		"branch":   sess.Issue.Branch,
		"history":  strings.TrimRight(history.String(), "\n"),
		"body":     msg.Body,
	})
	if err != nil {
		e.logger.Error("prompt template failed", "session_key", sess.Key, "error", err)
		return msg.Body
	}
	return prompt
}

// startInvocation launches one background runner invocation for the session.
// Any stale handle from a prior turn is stopped first.
func (e *Engine) startInvocation(sess *core.Session, prompt string) {
	inv := e.track(sess.Key)
	go e.run(inv, sess, prompt)
}

// track registers a fresh invocation for the key, stopping whatever was
// there before. Every tracked invocation is released through untrack, which
// is what Drain waits on.
func (e *Engine) track(key string) *invocation {
	inv := &invocation{id: core.NewID()}
	inv.ctx, inv.cancel = context.WithCancel(context.Background())
	e.inflight.Add(1)

	e.mu.Lock()
	prev := e.active[key]
	e.active[key] = inv
	e.mu.Unlock()
	if prev != nil {
		go prev.stop()
	}
	return inv
}

// untrack removes the invocation if it is still the current one for the key.
func (e *Engine) untrack(key string, inv *invocation) {
	e.mu.Lock()
	if e.active[key] == inv {
		delete(e.active, key)
	}
	e.mu.Unlock()
	inv.cancel()
	e.inflight.Done()
}

func (e *Engine) runnerConfig(sess *core.Session, prompt string) core.RunnerConfig {
	return core.RunnerConfig{
		Prompt:          prompt,
		WorkingDir:      sess.Workspace.Path,
		AllowedTools:    e.config.AllowedTools,
		ResumeSessionID: sess.RunnerSessionID(),
		Timeout:         e.config.InvocationTimeout,
	}
}

// run drives one invocation from start to terminal event.
func (e *Engine) run(inv *invocation, sess *core.Session, prompt string) {
	defer e.untrack(sess.Key, inv)

	if err := e.limiter.Acquire(inv.ctx); err != nil {
		e.logger.Warn("invocation never admitted", "session_key", sess.Key, "error", err)
		return
	}
	defer e.limiter.Release()

	started := time.Now()
	h, err := e.runner.Start(inv.ctx, e.runnerConfig(sess, prompt))
	if err != nil {
		e.failSession(inv.ctx, sess, fmt.Sprintf("The agent could not be started: %v", err))
		if e.telemetry != nil {
			e.telemetry.LogRunnerInvocation(e.runner.Name(), time.Since(started), false, err)
		}
		return
	}
	inv.setHandle(h)

	success := e.consume(inv, sess, h)
	if e.telemetry != nil {
		e.telemetry.LogRunnerInvocation(e.runner.Name(), time.Since(started), success, nil)
	}
}

// consume translates the handle's event stream into transitions, history and
// activity. Returns whether the invocation ended in a final event.
func (e *Engine) consume(inv *invocation, sess *core.Session, h core.Handle) bool {
	ref := sess.PlatformRef()
	success := false
	for ev := range h.Events() {
		if inv.cancelled.Load() {
			// A cancelled handle may flush buffered events; they are dead.
			continue
		}
		switch ev.Kind {
		case core.EventSession:
			sess.SetRunnerSessionID(ev.SessionID)
		case core.EventThought:
			e.post(inv.ctx, ref, core.ActivityThought, ev.Text)
		case core.EventAction:
			sess.AddEntry(core.Entry{
				Role:      core.RoleAssistant,
				Content:   ev.ActionDetail,
				ToolName:  ev.ActionName,
				Timestamp: ev.Timestamp,
			})
		case core.EventResponse:
			sess.AddEntry(core.Entry{Role: core.RoleAssistant, Content: ev.Text, Timestamp: ev.Timestamp})
			e.post(inv.ctx, ref, core.ActivityResponse, ev.Text)
			if e.ask.IsAsk(ev.Text) {
				e.applyEvent(sess, core.StateEventAgentAsksUser)
			}
		case core.EventLog:
			sess.AddEntry(core.Entry{Role: core.RoleSystem, Content: ev.Text, Timestamp: ev.Timestamp})
			e.logger.Debug("runner output", "session_key", sess.Key, "line", ev.Text)
		case core.EventFinal:
			sess.AddEntry(core.Entry{Role: core.RoleResult, Content: ev.Text, Timestamp: ev.Timestamp})
			if sess.Status() == core.StatusWaitingOnUser {
				// The turn ended on a question; the session stays open
				// for the user's answer.
				continue
			}
			if e.applyEvent(sess, core.StateEventAgentFinishes) {
				e.post(inv.ctx, ref, core.ActivityFinal, ev.Text)
				success = true
			}
		case core.EventError:
			sess.AddEntry(core.Entry{Role: core.RoleResult, Content: ev.Text, IsError: true, Timestamp: ev.Timestamp})
			e.failSession(inv.ctx, sess, humanError(ev))
		}
	}
	return success
}

// failSession transitions to Failed and tells the requester what happened.
func (e *Engine) failSession(ctx context.Context, sess *core.Session, body string) {
	e.applyEvent(sess, core.StateEventAgentErrors)
	if ref := sess.PlatformRef(); !ref.IsZero() {
		e.post(ctx, ref, core.ActivityError, body)
	}
}

// humanError renders a terminal error event for the requester.
func humanError(ev core.RunnerEvent) string {
	if ev.ExitCode != 0 {
		return fmt.Sprintf("The agent run failed (exit code %d): %v", ev.ExitCode, ev.Err)
	}
	return fmt.Sprintf("The agent run failed: %v", ev.Err)
}

// runTeam executes the task graph and merges the results into the parent
// session's activity stream.
func (e *Engine) runTeam(inv *invocation, sess *core.Session, g *team.Graph, score team.ComplexityScore) {
	defer e.untrack(sess.Key, inv)

	ref := sess.PlatformRef()
	e.post(inv.ctx, ref, core.ActivityResponse,
		fmt.Sprintf("Complexity %d/100: splitting this into a team of %d across %d tasks.",
			score.Score, score.SuggestedTeamSize, g.Len()))

	orch := team.NewOrchestrator(e.runner, func(o *team.OrchestratorOptions) {
		o.Limiter = e.limiter
		o.Logger = e.logger
	})
	results, err := orch.Execute(inv.ctx, g, e.runnerConfig(sess, ""))
	if inv.cancelled.Load() {
		return
	}

	failed := 0
	var summary strings.Builder
	for _, t := range g.Tasks() {
		r := results[t.ID]
		line := fmt.Sprintf("%s: %s", t.Subject, r.Status)
		if r.Status != team.TaskSucceeded {
			failed++
			if r.Err != nil {
				line += fmt.Sprintf(" (%v)", r.Err)
			}
		}
		summary.WriteString(line + "\n")
		sess.AddEntry(core.Entry{
			Role:      core.RoleResult,
			Content:   line,
			IsError:   r.Status != team.TaskSucceeded,
			Timestamp: time.Now().UTC(),
		})
	}

	switch {
	case err != nil:
		e.failSession(inv.ctx, sess, fmt.Sprintf("Team execution aborted: %v\n\n%s", err, summary.String()))
	case failed > 0:
		e.failSession(inv.ctx, sess,
			fmt.Sprintf("Team finished with %d of %d tasks unsuccessful.\n\n%s", failed, g.Len(), summary.String()))
	default:
		if e.applyEvent(sess, core.StateEventAgentFinishes) {
			e.post(inv.ctx, ref, core.ActivityFinal, "All team tasks completed.\n\n"+summary.String())
		}
	}
}
