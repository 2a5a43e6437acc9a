package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CredentialSource resolves the API key at call time
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// Completer is the contract the chat orchestration depends on.
// Complete returns a display-safe reply for every provider or transport failure;
// the error is non-nil only when ctx ended before the call settled.
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage, file *File) (string, error)
}

// Config fixes the request parameters of a Client
type Config struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	MaxFileChars int
}

// Client is the completion client: one provider call per conversational turn
type Client struct {
	provider    Provider
	credentials CredentialSource
	cfg         Config
}

// NewClient creates a completion client bound to one provider
func NewClient(provider Provider, credentials CredentialSource, cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = provider.DefaultModel()
	}
	if cfg.MaxFileChars <= 0 {
		cfg.MaxFileChars = DefaultMaxFileChars
	}
	return &Client{
		provider:    provider,
		credentials: credentials,
		cfg:         cfg,
	}
}

// Provider returns the provider the client talks to
func (c *Client) Provider() Provider {
	return c.provider
}

// Model returns the model identifier sent with every request
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends the conversation to the provider and returns the reply text
func (c *Client) Complete(ctx context.Context, messages []ChatMessage, file *File) (string, error) {
	apiKey, err := c.credentials.APIKey(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve api key")
	}
	if apiKey == "" {
		return MsgMissingCredential, nil
	}

	prepared := ApplyAttachment(messages, file, c.cfg.MaxFileChars)
	prepared = EnsureSystemPrompt(prepared, c.cfg.SystemPrompt)

	start := time.Now()
	reply, err := c.provider.Chat(ctx, apiKey, ChatRequest{
		Model:       c.cfg.Model,
		Messages:    prepared,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Error().
			Err(err).
			Str("provider", c.provider.Name()).
			Str("model", c.cfg.Model).
			Msg("completion request failed")
		return ReplyFor(err), nil
	}

	log.Debug().
		Str("provider", c.provider.Name()).
		Str("model", c.cfg.Model).
		Int("messages", len(prepared)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("completion received")

	return reply, nil
}
