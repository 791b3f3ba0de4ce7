package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RichardoC/couples-gpt/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client sends one completion request per call. It never retries.
type Client struct {
	llm llms.Model
}

func NewClient(baseURL, token, model string) (*Client, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
		openai.WithHTTPClient(&http.Client{Transport: &statusTransport{base: http.DefaultTransport}}),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm}, nil
}

func (c *Client) Complete(ctx context.Context, msgs []models.ChatMessage) (string, error) {
	status := new(int)
	ctx = context.WithValue(ctx, statusKey{}, status)

	resp, err := c.llm.GenerateContent(ctx, toMessageContent(msgs))
	if err != nil {
		if *status == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", &UpstreamError{Message: err.Error(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Message: "empty response", Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Content, nil
}

func toMessageContent(msgs []models.ChatMessage) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llms.MessageContent{
			Role:  messageType(m.Role),
			Parts: []llms.ContentPart{llms.TextContent{Text: m.Content}},
		})
	}
	return out
}

func messageType(r models.Role) llms.ChatMessageType {
	switch r {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

type statusKey struct{}

// statusTransport records the response status code into the *int stored
// under statusKey in the request context, if any.
type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if resp != nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}
