package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RichardoC/couples-gpt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		handler(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientComplete(t *testing.T) {
	var got map[string]any
	server := completionServer(t, func(w http.ResponseWriter, body map[string]any) {
		got = body
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Let's explore that feeling together."},
				"finish_reason": "stop",
			}},
		})
	})

	client, err := NewClient(server.URL, "test-key", "gpt-4")
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), []models.ChatMessage{
		{Role: models.RoleSystem, Content: "sys"},
		{Role: models.RoleUser, Content: "I feel unheard"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Let's explore that feeling together.", reply)

	assert.Equal(t, "gpt-4", got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestClientRateLimited(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Rate limit reached", "type": "requests"},
		})
	})

	client, err := NewClient(server.URL, "test-key", "gpt-4")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestClientUpstreamError(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	})

	client, err := NewClient(server.URL, "bad-key", "gpt-4")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Contains(t, upstream.Message, "Incorrect API key provided")
}

func TestStatusTransportWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := &http.Client{Transport: &statusTransport{base: http.DefaultTransport}}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
