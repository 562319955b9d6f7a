package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatRequest mirrors the wire shape of the chat-completion request body.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func newTestServer(t *testing.T, status int, body string, captured *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func testClient(server *httptest.Server) *Client {
	return NewClient(Options{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Timeout: 5 * time.Second,
	})
}

func TestGenerate_Success(t *testing.T) {
	var captured chatRequest
	server := newTestServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"fix bug"}}]}`, &captured)
	defer server.Close()

	text, err := testClient(server).Generate(context.Background(), Request{
		SystemPrompt: "You write commit messages.",
		UserContent:  "diff --git a/x b/x",
		Model:        "gpt-4o-mini",
		Temperature:  0.7,
		MaxTokens:    300,
	})

	require.NoError(t, err)
	assert.Equal(t, "fix bug", text)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	assert.Equal(t, 300, captured.MaxTokens)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You write commit messages.", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "diff --git a/x b/x", captured.Messages[1].Content)
}

func TestGenerate_ExtraPromptAppendedAfterBlankLine(t *testing.T) {
	var captured chatRequest
	server := newTestServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"looks fine"}}]}`, &captured)
	defer server.Close()

	_, err := testClient(server).Generate(context.Background(), Request{
		SystemPrompt: "You review diffs.",
		ExtraPrompt:  "focus on security",
		UserContent:  "diff",
		Model:        "gpt-4o",
	})

	require.NoError(t, err)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "You review diffs.\n\nfocus on security", captured.Messages[0].Content)
}

func TestGenerate_DiffContentSurvivesEncoding(t *testing.T) {
	// Quotes, newlines and control characters in a diff must not be able to
	// corrupt the request structure.
	hostile := "diff --git a/x b/x\n+\tsay(\"hi\\n\")\n+\x07bell"

	var captured chatRequest
	server := newTestServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"ok"}}]}`, &captured)
	defer server.Close()

	_, err := testClient(server).Generate(context.Background(), Request{
		SystemPrompt: "p",
		UserContent:  hostile,
		Model:        "m",
	})

	require.NoError(t, err)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, hostile, captured.Messages[1].Content)
}

func TestGenerate_APIErrorSurfacedVerbatim(t *testing.T) {
	server := newTestServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"rate limited","type":"rate_limit_error"}}`, nil)
	defer server.Close()

	_, err := testClient(server).Generate(context.Background(), Request{
		SystemPrompt: "p", UserContent: "diff", Model: "m",
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rate limited", apiErr.Message)
}

func TestGenerate_MalformedResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty content and no error", status: http.StatusOK,
			body: `{"choices":[{"message":{"content":"   "}}]}`},
		{name: "error object without message", status: http.StatusBadRequest,
			body: `{"error":{"message":"","type":"invalid_request_error"}}`},
		{name: "unparseable error body", status: http.StatusInternalServerError,
			body: `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.status, tt.body, nil)
			defer server.Close()

			_, err := testClient(server).Generate(context.Background(), Request{
				SystemPrompt: "p", UserContent: "diff", Model: "m",
			})

			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestGenerate_MissingAPIKeyFailsBeforeAnyNetworkCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	client := NewClient(Options{APIKey: "", BaseURL: server.URL + "/v1"})
	_, err := client.Generate(context.Background(), Request{
		SystemPrompt: "p", UserContent: "diff", Model: "m",
	})

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, hits, "no request may be sent without an API key")
}

func TestGenerate_AuthorizationHeader(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	_, err := testClient(server).Generate(context.Background(), Request{
		SystemPrompt: "p", UserContent: "diff", Model: "m",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", auth)
}
