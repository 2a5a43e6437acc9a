package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Role tags an entry of the request list
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Content is either TextContent or MultiPartContent
type Content interface {
	isContent()
}

// TextContent is plain message text
type TextContent string

// MultiPartContent carries text and image parts for vision input
type MultiPartContent []Part

func (TextContent) isContent()      {}
func (MultiPartContent) isContent() {}

// PartType names the kind of a content part
type PartType string

const (
	PartText     PartType = "text"
	PartImageURL PartType = "image_url"
)

// Part is one element of a multi-part message
type Part struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text part
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// ImagePart builds an image part pointing at url (usually a data URL)
func ImagePart(url string) Part {
	return Part{Type: PartImageURL, ImageURL: &ImageURL{URL: url}}
}

// ChatMessage is one role-tagged entry of the list sent to a provider
type ChatMessage struct {
	Role    Role
	Content Content
}

// Text returns the text of the message, joining text parts of multi-part content
func (m ChatMessage) Text() string {
	switch c := m.Content.(type) {
	case TextContent:
		return string(c)
	case MultiPartContent:
		for _, p := range c {
			if p.Type == PartText {
				return p.Text
			}
		}
	}
	return ""
}

type wireMessage struct {
	Role    Role            `json:"role"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON writes content as a JSON string or an array of parts
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	var (
		content []byte
		err     error
	)
	switch c := m.Content.(type) {
	case nil:
		content, err = json.Marshal("")
	case TextContent:
		content, err = json.Marshal(string(c))
	case MultiPartContent:
		content, err = json.Marshal([]Part(c))
	default:
		return nil, fmt.Errorf("unsupported content type %T", c)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireMessage{Role: m.Role, Content: content})
}

// UnmarshalJSON accepts both content shapes
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Role = w.Role

	if len(w.Content) == 0 || string(w.Content) == "null" {
		m.Content = TextContent("")
		return nil
	}
	if w.Content[0] == '[' {
		var parts []Part
		if err := json.Unmarshal(w.Content, &parts); err != nil {
			return fmt.Errorf("failed to decode content parts: %w", err)
		}
		m.Content = MultiPartContent(parts)
		return nil
	}
	var text string
	if err := json.Unmarshal(w.Content, &text); err != nil {
		return fmt.Errorf("failed to decode content: %w", err)
	}
	m.Content = TextContent(text)
	return nil
}

// File is an attachment handed to the completion client
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// ChatRequest is what a Provider sends upstream
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Provider defines the interface for chat-completion backends
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has a fallback credential
	IsConfigured() bool

	// APIKey returns the configured fallback credential
	APIKey() string

	// Chat issues one completion request and returns the first choice's text.
	// Provider-side failures are reported as *APIError.
	Chat(ctx context.Context, apiKey string, req ChatRequest) (string, error)
}
