// Package anthropic provides a classify.Classifier backed by the Anthropic
// Messages API. It asks the model for a single classification label and
// validates the answer against the closed classification set.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

const systemPrompt = `You classify software issues for an orchestration system.
Answer with exactly one word from this set:
question, documentation, transient, code, debugger, orchestrator.`

// Options configures the Anthropic classifier (model id, max tokens, API key).
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Classifier wraps the Anthropic Messages API behind classify.Classifier.
type Classifier struct {
	client *anthropic.Client
	opts   Options
}

// NewClassifier creates a new Anthropic classifier using the official client
func NewClassifier(optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 16,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Classifier{client: &client, opts: opts}
}

// NewClassifierFromClient creates a new Anthropic classifier from an existing client
func NewClassifierFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 16,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Classifier{client: client, opts: opts}
}

// Classify implements classify.Classifier.
func (c *Classifier) Classify(ctx context.Context, title, description string) (classify.Classification, error) {
	user := fmt.Sprintf("Title: %s\n\nDescription:\n%s", title, description)

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var answer string
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer += block.AsText().Text
		}
	}

	return parseLabel(answer)
}

func parseLabel(answer string) (classify.Classification, error) {
	label := classify.Classification(strings.ToLower(strings.TrimSpace(answer)))
	switch label {
	case classify.ClassQuestion, classify.ClassDocumentation, classify.ClassTransient,
		classify.ClassCode, classify.ClassDebugger, classify.ClassOrchestrator:
		return label, nil
	}
	return "", fmt.Errorf("unrecognized classification label %q", answer)
}
