package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	cases := []struct {
		name        string
		title       string
		description string
		want        Classification
	}{
		{"plain code work", "Add retry to uploader", "Wrap the S3 client with retries.", ClassCode},
		{"debugger", "Crash on startup", "Stack trace attached, segfault in init.", ClassDebugger},
		{"orchestrator", "Epic: split billing service", "break down into subtasks across services", ClassOrchestrator},
		{"documentation", "Update README badges", "documentation sweep", ClassDocumentation},
		{"transient", "Spike: try the new parser", "throwaway prototype", ClassTransient},
		{"question", "How does auth work?", "", ClassQuestion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tc.title, tc.description)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKeywordClassifier_Deterministic(t *testing.T) {
	c := NewKeywordClassifier()
	first, _ := c.Classify(context.Background(), "Add retry to uploader", "Wrap the client.")
	for i := 0; i < 10; i++ {
		got, _ := c.Classify(context.Background(), "Add retry to uploader", "Wrap the client.")
		assert.Equal(t, first, got)
	}
}

func TestKeywordAskDetector(t *testing.T) {
	d := NewKeywordAskDetector()
	assert.True(t, d.IsAsk("I found two approaches. Which option do you prefer?"))
	assert.True(t, d.IsAsk("Please confirm the schema change before I continue."))
	assert.True(t, d.IsAsk("Do you want me to also update the tests?"))
	assert.False(t, d.IsAsk("Reading the config loader now."))
	assert.False(t, d.IsAsk("Hmm, why does this test flake? Investigating the scheduler."))
	assert.False(t, d.IsAsk(""))
}

func TestKeywordAskDetector_CustomPhrases(t *testing.T) {
	d := &KeywordAskDetector{Phrases: []string{"awaiting approval"}}
	assert.True(t, d.IsAsk("Change staged, awaiting approval."))
}
