package core

import "context"

// ActivityKind classifies a unit of user-visible output.
type ActivityKind string

const (
	// ActivityThought surfaces intermediate agent reasoning.
	ActivityThought ActivityKind = "thought"
	// ActivityResponse is a user-directed progress message.
	ActivityResponse ActivityKind = "response"
	// ActivityError reports a terminal failure to the requester.
	ActivityError ActivityKind = "error"
	// ActivityFinal carries the final answer.
	ActivityFinal ActivityKind = "final"
)

// Activity is one unit of user-visible output posted back to the originating
// platform thread.
type Activity struct {
	Kind ActivityKind `json:"kind"`
	Body string       `json:"body"`
}

// ActivitySink posts canonical activity back to the originating platform.
//
// Implementations must be safe to call concurrently for different refs and
// must serialize posts for the same PlatformRef so two activities for one
// session are never observed out of emission order. A failed post is
// reported to the caller, never raised as a fatal condition.
type ActivitySink interface {
	Post(ctx context.Context, ref PlatformRef, activity Activity) error
}
