package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/logging"
)

// Options holds construction overrides for a Process runner.
type Options struct {
	// Binary is the executable to spawn. Defaults to the protocol name.
	Binary string
	// ExtraArgs are prepended before the protocol's own arguments.
	ExtraArgs []string
	// DefaultTimeout bounds the wait for a terminal event when the
	// invocation config carries none.
	DefaultTimeout time.Duration
	// GracePeriod is how long Stop waits between SIGTERM and SIGKILL.
	GracePeriod time.Duration
	// EventBufferSize sets channel buffering for emitted events.
	EventBufferSize int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Process runs an agent tool as a subprocess and normalizes its stdout
// through a Protocol. It implements core.Runner.
type Process struct {
	protocol Protocol
	opts     Options
}

// NewProcess constructs a Process runner for the given protocol.
func NewProcess(protocol Protocol, optFns ...func(o *Options)) *Process {
	opts := Options{
		DefaultTimeout:  30 * time.Minute,
		GracePeriod:     5 * time.Second,
		EventBufferSize: 100,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Binary == "" {
		opts.Binary = protocol.Name()
	}
	return &Process{protocol: protocol, opts: opts}
}

// Name implements core.Runner.
func (p *Process) Name() string { return p.protocol.Name() }

// Start implements core.Runner. Startup failures are returned immediately;
// anything after startup surfaces as events on the handle.
func (p *Process) Start(ctx context.Context, cfg core.RunnerConfig) (core.Handle, error) {
	protoArgs, stdin := p.protocol.Command(cfg)
	args := append(append([]string{}, p.opts.ExtraArgs...), protoArgs...)

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, p.opts.Binary, args...)
	cmd.Dir = cfg.WorkingDir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = p.opts.GracePeriod

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &core.RunnerError{Op: "pipe", Err: err}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &core.RunnerError{Op: "start", Err: err}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = p.opts.DefaultTimeout
	}

	h := &handle{
		name:   p.protocol.Name(),
		cancel: cancel,
		events: make(chan core.RunnerEvent, p.opts.EventBufferSize),
		stopc:  make(chan struct{}),
		done:   make(chan struct{}),
		logger: p.opts.Logger,
	}
	go h.pump(p.protocol, cmd, stdout, &stderr)
	go h.watchdog(timeout)
	return h, nil
}

// handle is one live subprocess invocation.
type handle struct {
	name   string
	cancel context.CancelFunc
	events chan core.RunnerEvent
	stopc  chan struct{} // closed on Stop; unblocks pending sends
	done   chan struct{} // closed when the pump exits
	logger logging.Logger

	stopOnce sync.Once
	mu       sync.Mutex
	stopped  bool
	timedOut bool
}

// Events implements core.Handle.
func (h *handle) Events() <-chan core.RunnerEvent { return h.events }

// Stop implements core.Handle. Safe to call from any goroutine, any number
// of times; every call returns only after event emission has ceased.
func (h *handle) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		close(h.stopc)
		h.cancel()
	})
	<-h.done
}

// watchdog cancels the subprocess when no terminal event arrived in time.
// The pump synthesizes the timeout error event.
func (h *handle) watchdog(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
	case <-timer.C:
		h.mu.Lock()
		h.timedOut = true
		h.mu.Unlock()
		h.cancel()
	}
}

// send delivers ev unless Stop was requested. Returns false once stopped.
func (h *handle) send(ev core.RunnerEvent) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.stopc:
		return false
	}
}

// pump owns all event emission for the handle. It scans stdout line by line,
// decodes through the protocol, enforces the once-only session and terminal
// guarantees, and synthesizes the terminal error for abnormal endings.
func (h *handle) pump(protocol Protocol, cmd *exec.Cmd, stdout io.Reader, stderr *bytes.Buffer) {
	defer close(h.done)
	defer close(h.events)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	terminal := false
	sawSession := false

scan:
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var events []core.RunnerEvent
		if !json.Valid(raw) {
			events = []core.RunnerEvent{core.NewLogEvent(string(raw))}
		} else if events = protocol.Decode(raw); len(events) == 0 {
			events = []core.RunnerEvent{core.NewLogEvent(string(raw))}
		}
		for _, ev := range events {
			if ev.Kind == core.EventSession {
				if sawSession {
					h.logger.Warn("runner protocol emitted a second session event", "runner", h.name)
					continue
				}
				sawSession = true
			}
			if ev.IsTerminal() {
				if terminal {
					h.logger.Warn("runner protocol emitted a second terminal event", "runner", h.name)
					continue
				}
				terminal = true
			}
			if !h.send(ev) {
				break scan
			}
		}
		if terminal {
			break
		}
	}

	// Release the subprocess and drain leftover output so Wait cannot
	// block on a full pipe.
	h.cancel()
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if terminal {
		return
	}

	h.mu.Lock()
	stopped, timedOut := h.stopped, h.timedOut
	h.mu.Unlock()

	switch {
	case stopped:
		// The consumer asked for termination; the stream just ends.
	case timedOut:
		h.send(core.NewErrorEvent(&core.RunnerError{Op: h.name, Err: errors.New("timed out waiting for a terminal event")}, 0))
	default:
		exitCode := 0
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			exitCode = ee.ExitCode()
		}
		err := waitErr
		if err == nil {
			err = errors.New("stream ended without a terminal event")
		} else if tail := stderrTail(stderr); tail != "" {
			err = fmt.Errorf("%w: %s", err, tail)
		}
		h.send(core.NewErrorEvent(&core.RunnerError{Op: h.name, ExitCode: exitCode, Err: err}, exitCode))
	}
}

// stderrTail returns the last few hundred bytes of captured stderr.
func stderrTail(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	const max = 400
	if len(s) > max {
		s = "…" + s[len(s)-max:]
	}
	return s
}
