// Package classify decides what kind of work an issue represents and where
// the boundary lies between an agent "asking the user" and merely thinking
// aloud. Both decisions are behind small interfaces so the heuristics can be
// swapped: the deterministic keyword implementations are the default, and the
// anthropic / openai sub-packages provide LLM-backed classifiers.
package classify

import "context"

// Classification buckets a unit of work for routing and complexity scoring.
type Classification string

const (
	// ClassQuestion is a pure question; never decomposed, scored zero.
	ClassQuestion Classification = "question"
	// ClassDocumentation is documentation-only work; scored zero.
	ClassDocumentation Classification = "documentation"
	// ClassTransient is throwaway/exploratory work; scored zero.
	ClassTransient Classification = "transient"
	// ClassCode is ordinary implementation work.
	ClassCode Classification = "code"
	// ClassDebugger is investigation of a defect.
	ClassDebugger Classification = "debugger"
	// ClassOrchestrator is coordination-heavy work spanning several concerns.
	ClassOrchestrator Classification = "orchestrator"
)

// Classifier assigns a Classification to an issue from its title and
// description.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (Classification, error)
}

// AskDetector decides whether a piece of agent output counts as asking the
// user a question (blocking the session on a reply) versus ordinary
// progress. The exact policy is configurable; implementations must be pure
// over their input.
type AskDetector interface {
	IsAsk(text string) bool
}
