// Package openai provides a classify.Classifier backed by the OpenAI Chat
// Completions API, mirroring the Anthropic provider's contract.
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

const systemPrompt = `You classify software issues for an orchestration system.
Answer with exactly one word from this set:
question, documentation, transient, code, debugger, orchestrator.`

// Options configure the OpenAI classifier. Fields mirror a minimal subset of
// Chat Completion parameters intentionally kept small.
type Options struct {
	Model               string
	MaxCompletionTokens int64
}

// Classifier wraps the OpenAI Chat Completions API behind classify.Classifier.
type Classifier struct {
	client *openai.Client
	opts   Options
}

// NewClassifier creates a new OpenAI classifier using the official client
func NewClassifier(optFns ...func(o *Options)) *Classifier {
	client := openai.NewClient()
	return NewClassifierFromClient(&client, optFns...)
}

// NewClassifierFromClient creates a new OpenAI classifier from an existing client
func NewClassifierFromClient(client *openai.Client, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 16,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{client: client, opts: opts}
}

// Classify implements classify.Classifier.
func (c *Classifier) Classify(ctx context.Context, title, description string) (classify.Classification, error) {
	user := fmt.Sprintf("Title: %s\n\nDescription:\n%s", title, description)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	label := classify.Classification(strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content)))
	switch label {
	case classify.ClassQuestion, classify.ClassDocumentation, classify.ClassTransient,
		classify.ClassCode, classify.ClassDebugger, classify.ClassOrchestrator:
		return label, nil
	}
	return "", fmt.Errorf("unrecognized classification label %q", resp.Choices[0].Message.Content)
}
