package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/qorix-chat/internal/llm"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-4o-mini"
	maxErrorBody   = 64 << 10
)

// Options configures the OpenRouter provider
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// Referer and Title identify the application to OpenRouter
	Referer string
	Title   string
	Timeout time.Duration
}

// Provider implements llm.Provider for OpenRouter's chat-completions endpoint
type Provider struct {
	apiKey       string
	defaultModel string
	referer      string
	title        string
	client       *http.Client
	baseURL      string
}

// NewProvider creates a new OpenRouter provider
func NewProvider(opts Options) *Provider {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Provider{
		apiKey:       opts.APIKey,
		defaultModel: opts.Model,
		referer:      opts.Referer,
		title:        opts.Title,
		client:       &http.Client{Timeout: opts.Timeout},
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openrouter"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"openai/gpt-4o-mini",
		"openai/gpt-4o",
		"qwen/qwen-2.5-72b-instruct",
		"meta-llama/llama-3.1-70b-instruct",
		"google/gemini-2.5-flash",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has a configured key
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// APIKey returns the configured key
func (p *Provider) APIKey() string {
	return p.apiKey
}

type chatRequest struct {
	Model       string            `json:"model"`
	Messages    []llm.ChatMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Chat sends one chat-completion request
func (p *Provider) Chat(ctx context.Context, apiKey string, req llm.ChatRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	if p.referer != "" {
		httpReq.Header.Set("HTTP-Referer", p.referer)
	}
	if p.title != "" {
		httpReq.Header.Set("X-Title", p.title)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &llm.APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}

	apiErr.Message = errResp.Error.Message
	switch code := errResp.Error.Code.(type) {
	case float64:
		apiErr.Code = int(code)
	case string:
		// string codes such as "rate_limit_exceeded" take part in classification
		if apiErr.Message == "" {
			apiErr.Message = code
		} else {
			apiErr.Message += " (" + strings.ReplaceAll(code, "_", " ") + ")"
		}
	}
	return apiErr
}
