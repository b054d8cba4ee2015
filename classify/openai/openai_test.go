package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

// stubClient returns a client whose Chat Completions API always answers with body.
func stubClient(t *testing.T, body string) *openai.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client := openai.NewClient(option.WithBaseURL(server.URL), option.WithAPIKey("sk-test"))
	return &client
}

func completionResponse(content string) string {
	quoted, _ := json.Marshal(content)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4o-mini",` +
		`"choices":[{"index":0,"message":{"role":"assistant","content":` + string(quoted) + `},"finish_reason":"stop"}],` +
		`"usage":{"prompt_tokens":40,"completion_tokens":2,"total_tokens":42}}`
}

func TestClassifier_ParsesModelAnswer(t *testing.T) {
	c := NewClassifierFromClient(stubClient(t, completionResponse(" Code \n")))

	got, err := c.Classify(context.Background(), "Add retry to uploader", "Wrap the client with retries.")
	require.NoError(t, err)
	assert.Equal(t, classify.ClassCode, got)
}

func TestClassifier_RejectsUnknownAnswer(t *testing.T) {
	c := NewClassifierFromClient(stubClient(t, completionResponse("definitely code, probably")))

	_, err := c.Classify(context.Background(), "Add retry to uploader", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized classification label")
}

func TestClassifier_NoChoicesIsAnError(t *testing.T) {
	c := NewClassifierFromClient(stubClient(t,
		`{"id":"chatcmpl-2","object":"chat.completion","created":1700000000,"model":"gpt-4o-mini","choices":[]}`))

	_, err := c.Classify(context.Background(), "Add retry to uploader", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
