package openrouter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/qorix-chat/internal/llm"
	"github.com/Rrens/qorix-chat/internal/llm/openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Chat(t *testing.T) {
	var got *http.Request
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer server.Close()

	p := openrouter.NewProvider(openrouter.Options{
		BaseURL: server.URL + "/",
		Referer: "http://localhost:8080",
		Title:   "Qorix AI",
	})

	reply, err := p.Chat(context.Background(), "sk-or-test", llm.ChatRequest{
		Messages:    []llm.ChatMessage{{Role: llm.RoleUser, Content: llm.TextContent("hello")}},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/chat/completions", got.URL.Path)
	assert.Equal(t, "Bearer sk-or-test", got.Header.Get("Authorization"))
	assert.Equal(t, "http://localhost:8080", got.Header.Get("HTTP-Referer"))
	assert.Equal(t, "Qorix AI", got.Header.Get("X-Title"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))

	assert.Equal(t, "openai/gpt-4o-mini", body["model"], "default model is used")
	assert.Equal(t, 0.7, body["temperature"])
	assert.Equal(t, float64(2000), body["max_tokens"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "hello"}}, body["messages"])
}

func TestProvider_ErrorBody(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    int
		message string
	}{
		{"numeric code", http.StatusUnauthorized, `{"error":{"message":"No auth credentials found","code":401}}`, 401, "No auth credentials found"},
		{"string code", http.StatusTooManyRequests, `{"error":{"message":"Slow down","code":"rate_limit_exceeded"}}`, 0, "Slow down (rate limit exceeded)"},
		{"plain text", http.StatusBadGateway, "bad gateway\n", 0, "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := openrouter.NewProvider(openrouter.Options{BaseURL: server.URL})
			_, err := p.Chat(context.Background(), "sk", llm.ChatRequest{})

			var apiErr *llm.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestProvider_Metadata(t *testing.T) {
	p := openrouter.NewProvider(openrouter.Options{Model: "qwen/qwen-2.5-72b-instruct"})

	assert.Equal(t, "openrouter", p.Name())
	assert.Equal(t, "qwen/qwen-2.5-72b-instruct", p.DefaultModel())
	assert.False(t, p.IsConfigured())
	assert.NotEmpty(t, p.AvailableModels())
}
