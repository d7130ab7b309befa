package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout bounds a single relay call. There is no retry: a slow or
// failed call is surfaced to the participant inline and practice continues.
const DefaultTimeout = 10 * time.Second

const defaultModel = openai.GPT4oMini

// systemPreamble is the fixed instruction sent ahead of the participant's
// reflective writing. The generated prose comes back verbatim.
const systemPreamble = "You are a warm, supportive companion for an emotional-wellbeing " +
	"exercise. The user has just finished a reflective writing practice and shares it with " +
	"you. Respond with a short piece of encouraging, non-judgmental prose feedback in the " +
	"language the user wrote in. Do not give medical advice, diagnoses, or action lists."

var (
	// ErrTimeout reports that the relay call exceeded its bounded wait.
	// Callers surface this differently from ErrService.
	ErrTimeout = errors.New("feedback generation timed out")

	// ErrService reports an upstream failure other than a timeout.
	ErrService = errors.New("feedback service failed")
)

// Client relays participant text to an OpenAI-compatible chat-completion API.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a relay client. baseURL overrides the API host for
// OpenAI-compatible services and tests; empty means the real API.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   defaultModel,
		timeout: DefaultTimeout,
	}, nil
}

// WithTimeout returns a copy of the client with a different bounded wait.
func (c *Client) WithTimeout(d time.Duration) *Client {
	out := *c
	out.timeout = d
	return &out
}

// Feedback sends the participant's text to the model and returns the
// generated prose unmodified. The wait is bounded by the client timeout;
// exceeding it yields ErrTimeout, any other upstream failure ErrService.
func (c *Client) Feedback(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPreamble},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrService)
	}

	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: rate limited: %v", ErrService, err)
		case apiErr.HTTPStatusCode >= 500:
			return fmt.Errorf("%w: upstream %d: %v", ErrService, apiErr.HTTPStatusCode, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrService, err)
}
