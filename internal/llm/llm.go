// Package llm calls an OpenAI-compatible chat-completion API to turn a diff
// into generated text. One request per run, no retries: a failed call against
// a metered generation service is always fatal to the run.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned before any network activity when no API key is
// configured.
var ErrMissingAPIKey = errors.New(
	"API key not set, export GCA_API_KEY or run: gca config set api_key")

// ErrMalformedResponse marks a response from which neither completion text
// nor a service error message could be extracted.
var ErrMalformedResponse = errors.New("malformed API response: no completion text and no error message")

// APIError carries the generation service's own error text verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Request describes one generation call. UserContent is sent verbatim as the
// user message; ExtraPrompt, when present, is appended to the system prompt
// separated by a blank line.
type Request struct {
	SystemPrompt string
	ExtraPrompt  string
	UserContent  string
	Model        string
	Temperature  float32
	MaxTokens    int
}

// Client is a thin wrapper over the go-openai client.
type Client struct {
	opts Options
}

func NewClient(opts Options) *Client {
	return &Client{opts: opts}
}

// Generate performs a single chat-completion call and returns the generated
// text. Failures are one of ErrMissingAPIKey, *APIError (the service's error
// text) or ErrMalformedResponse.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.opts.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	clientConfig := openai.DefaultConfig(c.opts.APIKey)
	if c.opts.BaseURL != "" {
		clientConfig.BaseURL = c.opts.BaseURL
	}
	if c.opts.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: c.opts.Timeout}
	}
	client := openai.NewClientWithConfig(clientConfig)

	systemPrompt := req.SystemPrompt
	if req.ExtraPrompt != "" {
		systemPrompt += "\n\n" + req.ExtraPrompt
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserContent},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrMalformedResponse
	}

	// An empty completion is not a failure by itself; it only becomes one
	// because there is no error message to prefer over it.
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrMalformedResponse
	}
	return text, nil
}

// classifyError maps transport errors to the package's taxonomy: responses
// carrying a service error message become *APIError with that text verbatim,
// structurally unusable responses become ErrMalformedResponse.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return &APIError{Message: msg}
		}
		return ErrMalformedResponse
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return ErrMalformedResponse
	}

	return err
}
