package bus

import (
	"context"
	"fmt"
	"strings"

	"github.com/ceedaragents/cyrus-sub010/core"
	"github.com/ceedaragents/cyrus-sub010/logging"
	"github.com/ceedaragents/cyrus-sub010/session"
)

// Context describes how the transport layer verified the inbound payload.
// Verification itself (signatures, OAuth) happens outside this core; the
// mode travels with the payload so translators can refuse unverified input.
type Context struct {
	VerificationMode string
}

// Verification modes accepted by the shipped translators.
const (
	// VerifiedWebhook marks payloads whose transport signature checked out.
	VerifiedWebhook = "webhook-signature"
	// VerifiedTrusted marks payloads from a trusted local source (CLI, tests).
	VerifiedTrusted = "trusted"
)

// Translator converts one platform's raw payloads into InternalMessages.
// CanTranslate is a pure capability probe over the payload shape; it must not
// have side effects and must be cheap.
type Translator interface {
	Source() core.Source
	CanTranslate(raw map[string]any) bool
	Translate(raw map[string]any, tctx Context) (core.InternalMessage, error)
}

// Handler consumes successfully dispatched messages bound to their session.
// The engine implements this.
type Handler interface {
	// HandleMessage receives a message whose implied state event (if any)
	// was already applied successfully. ev is empty for messages that do
	// not imply a transition (content updates to an active session).
	HandleMessage(ctx context.Context, sess *core.Session, msg core.InternalMessage, ev core.StateEvent) error

	// HandleRejected receives messages whose implied transition was
	// refused, so a "session ended" style notice can be posted. The
	// session state is unchanged.
	HandleRejected(ctx context.Context, sess *core.Session, msg core.InternalMessage, cause error)
}

// Bus owns translation and dispatch. It holds the only reference allowed to
// create registry entries.
type Bus struct {
	translators []Translator
	registry    *session.Registry
	handler     Handler
	logger      logging.Logger
}

// Options configures a Bus.
type Options struct {
	// Translators probed in order. Defaults to the full shipped set.
	Translators []Translator
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// New constructs a Bus dispatching into registry and handler.
func New(registry *session.Registry, handler Handler, optFns ...func(o *Options)) *Bus {
	opts := Options{
		Translators: []Translator{
			NewLinearTranslator(),
			NewGitHubTranslator(),
			NewSlackTranslator(),
			NewCLITranslator(),
		},
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Bus{
		translators: opts.Translators,
		registry:    registry,
		handler:     handler,
		logger:      opts.Logger,
	}
}

// Translate selects a translator by capability probe and converts the raw
// payload. A payload no translator claims fails with an unrecognized-payload
// TranslationError.
func (b *Bus) Translate(raw map[string]any, tctx Context) (core.InternalMessage, error) {
	for _, t := range b.translators {
		if t.CanTranslate(raw) {
			return t.Translate(raw, tctx)
		}
	}
	return core.InternalMessage{}, &core.TranslationError{Reason: core.ReasonUnrecognizedPayload}
}

// Dispatch translates raw and routes the message: look up or create the
// session, apply the implied state event, hand off to the handler. On
// translation failure the payload is dropped with a logged diagnostic and
// the error returned; it is never retried.
func (b *Bus) Dispatch(ctx context.Context, raw map[string]any, tctx Context) error {
	msg, err := b.Translate(raw, tctx)
	if err != nil {
		b.logger.Warn("dropping untranslatable payload", "error", err)
		return err
	}
	return b.DispatchMessage(ctx, msg)
}

// DispatchMessage routes an already-canonical message.
func (b *Bus) DispatchMessage(ctx context.Context, msg core.InternalMessage) error {
	sess, err := b.sessionFor(msg)
	if err != nil {
		b.logger.Warn("no session for message", "session_key", msg.SessionKey, "action", msg.Action, "error", err)
		return err
	}
	if !msg.PlatformRef.IsZero() {
		sess.SetPlatformRef(msg.PlatformRef)
	}

	ev, implied := stateEventFor(msg.Action, sess.Status())
	if !implied {
		return b.handler.HandleMessage(ctx, sess, msg, "")
	}

	if _, err := sess.ApplyEvent(ev); err != nil {
		b.logger.Warn("discarding message after rejected transition",
			"session_key", msg.SessionKey, "action", msg.Action, "status", string(sess.Status()), "error", err)
		b.handler.HandleRejected(ctx, sess, msg, err)
		return err
	}
	return b.handler.HandleMessage(ctx, sess, msg, ev)
}

// sessionFor looks up the session for msg, creating one only for actions
// allowed to open a session.
func (b *Bus) sessionFor(msg core.InternalMessage) (*core.Session, error) {
	switch msg.Action {
	case core.ActionSessionStart, core.ActionUserPrompt:
		issue := core.Issue{ID: msg.WorkItemID, Title: msg.Title, Branch: msg.Branch}
		sess, created := b.registry.GetOrCreate(msg.SessionKey, issue, core.Workspace{})
		if created {
			b.logger.Info("session created", "session_key", msg.SessionKey, "source", string(msg.Source))
		}
		return sess, nil
	default:
		return b.registry.Get(msg.SessionKey)
	}
}

// stateEventFor maps a message action onto the lifecycle event it implies in
// the session's current status. The second return is false when the message
// implies no transition at all.
func stateEventFor(action core.MessageAction, status core.Status) (core.StateEvent, bool) {
	switch action {
	case core.ActionSessionStart:
		return core.StateEventStart, true
	case core.ActionUserPrompt:
		if status == core.StatusPending {
			return core.StateEventStart, true
		}
		return core.StateEventUserReplies, true
	case core.ActionContentUpdate:
		if status == core.StatusWaitingOnUser {
			return core.StateEventUserReplies, true
		}
		// Context for an in-flight session is recorded without a transition.
		return "", false
	case core.ActionStopSignal, core.ActionUnassign:
		return core.StateEventCancel, true
	}
	return "", false
}

// field helpers shared by the translators.

// stringField walks a nested map by path and returns the string leaf.
func stringField(raw map[string]any, path ...string) (string, bool) {
	cur := raw
	for i, p := range path {
		v, ok := cur[p]
		if !ok {
			return "", false
		}
		if i == len(path)-1 {
			s, ok := v.(string)
			return s, ok && s != ""
		}
		cur, ok = v.(map[string]any)
		if !ok {
			return "", false
		}
	}
	return "", false
}

// numberField walks a nested map by path and renders a JSON number leaf.
func numberField(raw map[string]any, path ...string) (string, bool) {
	cur := raw
	for i, p := range path {
		v, ok := cur[p]
		if !ok {
			return "", false
		}
		if i == len(path)-1 {
			switch n := v.(type) {
			case float64:
				return strings.TrimSuffix(fmt.Sprintf("%.0f", n), ".0"), true
			case int:
				return fmt.Sprintf("%d", n), true
			case string:
				return n, n != ""
			}
			return "", false
		}
		cur, ok = v.(map[string]any)
		if !ok {
			return "", false
		}
	}
	return "", false
}

// missing builds the TranslationError for a required field.
func missing(source core.Source, field string) error {
	return &core.TranslationError{Source: source, Reason: core.ReasonMissingField, Field: field}
}
