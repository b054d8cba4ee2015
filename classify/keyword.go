package classify

import (
	"context"
	"strings"
)

// KeywordClassifier is the deterministic default Classifier. It inspects the
// title and description for marker phrases, falling back to ClassCode. The
// same input always yields the same classification.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the deterministic keyword classifier.
func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

var classMarkers = []struct {
	class   Classification
	markers []string
}{
	{ClassOrchestrator, []string{"epic", "break down", "coordinate", "multiple teams", "across services", "project plan"}},
	{ClassDebugger, []string{"bug", "crash", "panic", "stack trace", "regression", "reproduce"}},
	{ClassDocumentation, []string{"readme", "documentation", "changelog", "docs only", "document "}},
	{ClassTransient, []string{"throwaway", "one-off", "spike", "experiment only"}},
}

// Classify implements Classifier. The error is always nil; the signature
// matches the LLM-backed providers.
func (c *KeywordClassifier) Classify(_ context.Context, title, description string) (Classification, error) {
	text := strings.ToLower(title + "\n" + description)
	for _, cm := range classMarkers {
		for _, m := range cm.markers {
			if strings.Contains(text, m) {
				return cm.class, nil
			}
		}
	}
	if isBareQuestion(strings.TrimSpace(title), strings.TrimSpace(description)) {
		return ClassQuestion, nil
	}
	return ClassCode, nil
}

// isBareQuestion treats a work item as a question only when the request
// itself ends in a question mark and carries no implementation body.
func isBareQuestion(title, description string) bool {
	if strings.HasSuffix(title, "?") && len(description) < 200 {
		return true
	}
	return description != "" && strings.HasSuffix(description, "?") && len(description) < 200
}

// KeywordAskDetector is the deterministic default AskDetector: agent output
// counts as asking the user when it ends with a question directed at them or
// carries an explicit confirmation phrase.
type KeywordAskDetector struct {
	// Phrases additionally treated as asks, lowercase. Optional.
	Phrases []string
}

// NewKeywordAskDetector returns the default ask/progress boundary detector.
func NewKeywordAskDetector() *KeywordAskDetector {
	return &KeywordAskDetector{}
}

var askPhrases = []string{
	"please confirm",
	"let me know",
	"should i proceed",
	"which option",
	"do you want",
	"can you clarify",
	"waiting for your",
}

// IsAsk implements AskDetector.
func (d *KeywordAskDetector) IsAsk(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, p := range askPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	for _, p := range d.Phrases {
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	// A trailing question mark only counts when the last sentence addresses
	// the user, otherwise rhetorical "thinking aloud" would block sessions.
	if strings.HasSuffix(trimmed, "?") {
		last := lower
		if idx := strings.LastIndexAny(lower[:len(lower)-1], ".!?\n"); idx >= 0 {
			last = lower[idx+1:]
		}
		return strings.Contains(last, "you") || strings.Contains(last, "your")
	}
	return false
}
