// Package bus translates heterogeneous platform payloads into the canonical
// InternalMessage and dispatches them by message kind.
//
// One translator exists per platform; the bus selects it through a capability
// probe on the raw payload shape, never by inspecting concrete types. Each
// translator validates the minimum required fields for its action, derives
// the session key deterministically, and attaches a platform ref sufficient
// for the activity sink to reply without re-deriving platform identifiers.
//
// The bus performs no business logic beyond dispatch: it looks up or creates
// the session for the derived key, feeds the session's state machine the
// event implied by the message action, and only on success hands the message
// to the handler for prompt assembly. Translation failures are dropped with a
// logged diagnostic and never retried; they indicate a malformed payload,
// not a transient fault.
package bus
