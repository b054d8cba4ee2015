package team

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/internal/util"
	"github.com/ceedaragents/cyrus-sub010/logging"
)

// TaskStatus is the final disposition of one task.
type TaskStatus string

const (
	// TaskSucceeded means the task's invocation produced a final event.
	TaskSucceeded TaskStatus = "succeeded"
	// TaskFailed means the invocation produced an error event or could not start.
	TaskFailed TaskStatus = "failed"
	// TaskBlocked means a dependency did not succeed; the task never ran.
	TaskBlocked TaskStatus = "blocked"
)

// TaskResult records how one task ended.
type TaskResult struct {
	TaskID string
	Status TaskStatus
	Output string
	Err    error
}

const taskPrompt = `You are the {{.role}} on a team working on one issue.

## Your task: {{.subject}}

{{.description}}

Report your result when the task is complete.`

// OrchestratorOptions holds construction overrides for Orchestrator.
type OrchestratorOptions struct {
	// Limiter bounds concurrent task invocations. Defaults to unlimited.
	Limiter *core.InvocationLimiter
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Orchestrator executes a task graph as waves of runner invocations. Within
// a wave tasks run concurrently, bounded by the limiter; waves themselves
// are strictly sequential. A task whose dependency failed or was blocked is
// marked Blocked and never attempted, while independent branches proceed.
type Orchestrator struct {
	runner core.Runner
	opts   OrchestratorOptions
}

// NewOrchestrator creates an orchestrator driving the given runner.
func NewOrchestrator(runner core.Runner, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	opts := OrchestratorOptions{
		Limiter: core.NewInvocationLimiter(0),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{runner: runner, opts: opts}
}

// Execute runs the graph to completion and returns a result per task. Task
// failures are recorded in the results, not returned as an error; the only
// error return is context cancellation.
func (o *Orchestrator) Execute(ctx context.Context, g *Graph, base core.RunnerConfig) (map[string]TaskResult, error) {
	results := make(map[string]TaskResult, g.Len())
	var mu sync.Mutex

	for len(results) < g.Len() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		// Propagate blockage before scheduling: a task whose settled
		// dependency did not succeed can never run.
		for changed := true; changed; {
			changed = false
			for _, t := range g.Tasks() {
				if _, settled := results[t.ID]; settled {
					continue
				}
				for _, dep := range t.BlockedBy {
					r, settled := results[dep]
					if settled && r.Status != TaskSucceeded {
						results[t.ID] = TaskResult{
							TaskID: t.ID,
							Status: TaskBlocked,
							Err:    &core.TaskBlockedError{TaskID: t.ID, DependencyID: dep},
						}
						o.opts.Logger.Info("task blocked", "task", t.ID, "dependency", dep)
						changed = true
						break
					}
				}
			}
		}

		var wave []Task
		for _, t := range g.Tasks() {
			if _, settled := results[t.ID]; settled {
				continue
			}
			ready := true
			for _, dep := range t.BlockedBy {
				if r, settled := results[dep]; !settled || r.Status != TaskSucceeded {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, t)
			}
		}
		if len(wave) == 0 {
			if len(results) < g.Len() {
				// Unreachable for a validated graph.
				return results, errors.New("no runnable tasks remain")
			}
			break
		}

		var wg sync.WaitGroup
		for _, t := range wave {
			wg.Add(1)
			go func(t Task) {
				defer wg.Done()
				r := o.runTask(ctx, t, base)
				mu.Lock()
				results[t.ID] = r
				mu.Unlock()
			}(t)
		}
		wg.Wait()
	}
	return results, nil
}

func (o *Orchestrator) runTask(ctx context.Context, t Task, base core.RunnerConfig) TaskResult {
	if err := o.opts.Limiter.Acquire(ctx); err != nil {
		return TaskResult{TaskID: t.ID, Status: TaskFailed, Err: err}
	}
	defer o.opts.Limiter.Release()

	prompt, err := util.RenderTemplate(taskPrompt, map[string]any{
		"role":        t.AssignTo,
		"subject":     t.Subject,
		"description": t.Description,
	})
	if err != nil {
		return TaskResult{TaskID: t.ID, Status: TaskFailed, Err: err}
	}

	cfg := base
	cfg.Prompt = prompt
	cfg.ResumeSessionID = ""

	o.opts.Logger.Info("starting task", "task", t.ID, "role", t.AssignTo)
	h, err := o.runner.Start(ctx, cfg)
	if err != nil {
		return TaskResult{TaskID: t.ID, Status: TaskFailed, Err: err}
	}

	for ev := range h.Events() {
		switch {
		case ev.Kind == core.EventFinal:
			return TaskResult{TaskID: t.ID, Status: TaskSucceeded, Output: ev.Text}
		case ev.Kind == core.EventError:
			return TaskResult{TaskID: t.ID, Status: TaskFailed, Err: ev.Err}
		}
	}
	return TaskResult{TaskID: t.ID, Status: TaskFailed, Err: fmt.Errorf("task %q ended without a result", t.ID)}
}
