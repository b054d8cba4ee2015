package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ceedaragents/cyrus-sub010/classify"
	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/logging"
	"github.com/ceedaragents/cyrus-sub010/team"
)

// Config defines tuning parameters for the engine's operational behavior.
type Config struct {
	// MaxConcurrentInvocations limits how many runner invocations may be
	// in flight at once, across single sessions and team tasks. Zero
	// means unlimited.
	MaxConcurrentInvocations int

	// InvocationTimeout bounds each invocation's wait for a terminal
	// event. Zero defers to the runner's default.
	InvocationTimeout time.Duration

	// AllowedTools is passed through to every runner invocation.
	AllowedTools []string

	// HistoryLimit caps how many trailing conversation entries are
	// rendered into a fresh prompt.
	HistoryLimit int
}

// DefaultConfig provides production-ready defaults.
var DefaultConfig = Config{
	MaxConcurrentInvocations: 10,
	HistoryLimit:             20,
}

// Options configures an Engine using the functional options pattern.
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// Classifier buckets new work for routing and complexity scoring.
	// Defaults to the deterministic keyword classifier.
	Classifier classify.Classifier

	// AskDetector decides when agent output blocks the session on a user
	// reply. Defaults to the keyword heuristic.
	AskDetector classify.AskDetector

	// Scorer gates team decomposition. Defaults to the standard scorer.
	Scorer *team.Scorer

	// Logger defaults to NoOpLogger.
	Logger logging.Logger

	// Telemetry, when set, records structured lifecycle events
	// (transitions, invocation outcomes, activity posts).
	Telemetry *logging.SessionLogger
}

// WithConfig overrides the operational parameters.
func WithConfig(cfg Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithClassifier overrides the work classifier.
func WithClassifier(c classify.Classifier) func(o *Options) {
	return func(o *Options) { o.Classifier = c }
}

// WithAskDetector overrides the ask-vs-progress heuristic.
func WithAskDetector(d classify.AskDetector) func(o *Options) {
	return func(o *Options) { o.AskDetector = d }
}

// WithLogger overrides the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Engine drives the full session lifecycle. It implements bus.Handler.
//
// Responsibilities:
//   - start a runner invocation for each session begun or resumed
//   - translate runner events into lifecycle transitions, history entries
//     and sink activity
//   - gate complex work into the team orchestrator
//   - stop subprocesses on cancellation and discard their late events
//
// Concurrency model: message handling returns immediately; each invocation
// runs in its own goroutine, bounded globally by the invocation limiter, so
// sessions never block each other. At most one invocation is live per
// session, enforced by the lifecycle state machine and by stopping any
// stale handle before a resume.
type Engine struct {
	runner    core.Runner
	sink      core.ActivitySink
	config    Config
	classify  classify.Classifier
	ask       classify.AskDetector
	scorer    *team.Scorer
	limiter   *core.InvocationLimiter
	logger    logging.Logger
	telemetry *logging.SessionLogger

	mu       sync.Mutex
	active   map[string]*invocation
	inflight sync.WaitGroup
}

// New creates an Engine driving runner and posting activity to sink.
func New(runner core.Runner, sink core.ActivitySink, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:      DefaultConfig,
		Classifier:  classify.NewKeywordClassifier(),
		AskDetector: classify.NewKeywordAskDetector(),
		Scorer:      team.NewScorer(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		runner:    runner,
		sink:      sink,
		config:    opts.Config,
		classify:  opts.Classifier,
		ask:       opts.AskDetector,
		scorer:    opts.Scorer,
		limiter:   core.NewInvocationLimiter(opts.Config.MaxConcurrentInvocations),
		logger:    opts.Logger,
		telemetry: opts.Telemetry,
		active:    make(map[string]*invocation),
	}
}

// HandleMessage implements bus.Handler. The implied state event has already
// been applied by the bus; the engine reacts to it.
func (e *Engine) HandleMessage(ctx context.Context, sess *core.Session, msg core.InternalMessage, ev core.StateEvent) error {
	switch ev {
	case core.StateEventStart:
		sess.AddEntry(core.Entry{Role: core.RoleUser, Content: msg.Body, Timestamp: msg.ReceivedAt})
		e.begin(sess, msg)
	case core.StateEventUserReplies:
		sess.AddEntry(core.Entry{Role: core.RoleUser, Content: msg.Body, Timestamp: msg.ReceivedAt})
		e.resume(sess, msg)
	case core.StateEventCancel:
		sess.AddEntry(core.Entry{Role: core.RoleSystem, Content: "session cancelled by " + msg.Actor, Timestamp: msg.ReceivedAt})
		e.cancelSession(ctx, sess)
	case "":
		// Context for an in-flight session: recorded, no transition.
		sess.AddEntry(core.Entry{Role: core.RoleUser, Content: msg.Body, Timestamp: msg.ReceivedAt})
	default:
		return fmt.Errorf("unhandled state event %q", ev)
	}
	return nil
}

// HandleRejected implements bus.Handler. The session's state is unchanged;
// the requester gets a notice explaining why nothing happened.
func (e *Engine) HandleRejected(ctx context.Context, sess *core.Session, msg core.InternalMessage, cause error) {
	if sess == nil {
		return
	}
	ref := msg.PlatformRef
	if ref.IsZero() {
		ref = sess.PlatformRef()
	}
	if ref.IsZero() {
		return
	}

	status := sess.Status()
	switch {
	case core.IsTerminal(status):
		e.post(ctx, ref, core.ActivityResponse,
			fmt.Sprintf("This session has ended (%s) and no longer accepts input. Start a new session to continue.", status))
	case status == core.StatusActive:
		// The agent is mid-run; keep the message for the next prompt.
		sess.AddEntry(core.Entry{Role: core.RoleUser, Content: msg.Body, Timestamp: msg.ReceivedAt})
		e.post(ctx, ref, core.ActivityResponse,
			"The agent is still working on this. Your message was recorded and will be included in the next run.")
	default:
		e.logger.Warn("rejected message", "session_key", sess.Key, "status", string(status), "error", cause)
	}
}

// Drain blocks until every in-flight invocation has finished or ctx ends.
// Call after the last message has been dispatched; it does not stop new work
// from being handed to the engine.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cancelSession stops the live invocation, if any. The Cancelled status is
// already applied; the subprocess is signalled asynchronously and its late
// events are discarded.
func (e *Engine) cancelSession(ctx context.Context, sess *core.Session) {
	e.mu.Lock()
	inv := e.active[sess.Key]
	e.mu.Unlock()
	if inv != nil {
		go inv.stop()
	}
	if ref := sess.PlatformRef(); !ref.IsZero() {
		e.post(ctx, ref, core.ActivityResponse, "Session cancelled.")
	}
}

// post delivers one activity, logging delivery failures. A failed post never
// fails the session.
func (e *Engine) post(ctx context.Context, ref core.PlatformRef, kind core.ActivityKind, body string) {
	err := e.sink.Post(ctx, ref, core.Activity{Kind: kind, Body: body})
	if e.telemetry != nil {
		e.telemetry.LogActivityPost(ref.Key(), string(kind), err)
	}
	if err != nil {
		e.logger.Warn("activity post failed", "thread", ref.Key(), "kind", string(kind), "error", err)
	}
}

// applyEvent routes a lifecycle transition and records the outcome.
func (e *Engine) applyEvent(sess *core.Session, ev core.StateEvent) bool {
	from := sess.Status()
	to, err := sess.ApplyEvent(ev)
	if e.telemetry != nil {
		e.telemetry.LogTransition(string(ev), string(from), string(to), err)
	}
	if err != nil {
		e.logger.Warn("transition refused", "session_key", sess.Key, "event", string(ev), "status", string(from), "error", err)
		return false
	}
	return true
}
