// Package cyrus provides a high-level façade over the session orchestration
// core: the message bus, session registry, runner, activity sink and engine.
// Most applications interact with this package by:
//  1. Creating a Cyrus via New() (optionally overriding the runner, sink,
//     classifier and engine tuning)
//  2. Feeding raw platform payloads to Dispatch, or canonical messages to
//     DispatchMessage
//  3. Reading agent output from the configured activity sink
//
// The façade delegates orchestration to engine.Engine while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a real agent runner, a
// platform-backed sink and a structured logger.
package cyrus

import (
	"context"
	"time"

	"github.com/ceedaragents/cyrus-sub010/bus"
	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/engine"
	"github.com/ceedaragents/cyrus-sub010/logging"
	"github.com/ceedaragents/cyrus-sub010/runner"
	"github.com/ceedaragents/cyrus-sub010/session"
	"github.com/ceedaragents/cyrus-sub010/sink"
)

// Options configures the Cyrus instance.
type Options struct {
	// EngineConfig tunes concurrency, timeouts and prompt assembly.
	EngineConfig engine.Config

	// Runner drives the agent subprocess. Defaults to the Claude Code
	// stream-json runner.
	Runner core.Runner

	// Sink receives agent activity. Defaults to an in-memory sink; it is
	// always wrapped for per-thread FIFO delivery.
	Sink core.ActivitySink

	// EngineOptions are applied to the underlying engine (classifier,
	// ask detector, telemetry).
	EngineOptions []func(o *engine.Options)

	// Translators overrides the bus translator set.
	Translators []bus.Translator

	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Cyrus is the high-level façade aggregating the bus, registry and engine.
type Cyrus struct {
	opts     Options
	bus      *bus.Bus
	registry *session.Registry
	engine   *engine.Engine
	sink     *sink.Serialized
}

// New creates a Cyrus instance with optional overrides. Any unset dependency
// is initialized with a local default.
func New(optFns ...func(o *Options)) *Cyrus {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Runner == nil {
		opts.Runner = runner.NewProcess(runner.NewClaudeProtocol())
	}
	if opts.Sink == nil {
		opts.Sink = sink.NewMemory()
	}

	serialized := sink.NewSerialized(opts.Sink, func(o *sink.SerializedOptions) {
		o.Logger = opts.Logger
	})

	engineOpts := append([]func(o *engine.Options){
		func(o *engine.Options) {
			o.Config = opts.EngineConfig
			o.Logger = opts.Logger
		},
	}, opts.EngineOptions...)
	e := engine.New(opts.Runner, serialized, engineOpts...)

	registry := session.NewRegistry()
	b := bus.New(registry, e, func(o *bus.Options) {
		o.Logger = opts.Logger
		if opts.Translators != nil {
			o.Translators = opts.Translators
		}
	})

	return &Cyrus{
		opts:     opts,
		bus:      b,
		registry: registry,
		engine:   e,
		sink:     serialized,
	}
}

// Dispatch translates one raw platform payload and routes it.
func (c *Cyrus) Dispatch(ctx context.Context, raw map[string]any, tctx bus.Context) error {
	return c.bus.Dispatch(ctx, raw, tctx)
}

// DispatchMessage routes an already-canonical message.
func (c *Cyrus) DispatchMessage(ctx context.Context, msg core.InternalMessage) error {
	return c.bus.DispatchMessage(ctx, msg)
}

// Session looks up a live session by key.
func (c *Cyrus) Session(key string) (*core.Session, error) {
	return c.registry.Get(key)
}

// EvictIdle removes terminal sessions idle for longer than olderThan and
// returns how many were evicted.
func (c *Cyrus) EvictIdle(olderThan time.Duration) int {
	return c.registry.EvictIdle(olderThan)
}

// Drain waits for every in-flight invocation to finish or for ctx to end.
// Call after the last dispatch, before Close.
func (c *Cyrus) Drain(ctx context.Context) error {
	return c.engine.Drain(ctx)
}

// Close drains pending activity posts. Call after all dispatching is done.
func (c *Cyrus) Close() {
	c.sink.Close()
}
