package domain

import (
	"fmt"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	// RoleSystem only appears in the request sent to a provider, never in a session.
	RoleSystem MessageRole = "system"
)

// Attachment describes a file attached to a user message.
// URL is a resource handle resolved by the BlobStore.
type Attachment struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

// Message is one turn in a conversation
type Message struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Role       MessageRole `json:"role"`
	Attachment *Attachment `json:"attachment,omitempty"`
	// Pending is set on an assistant placeholder while output is awaited or revealed.
	Pending bool `json:"pending,omitempty"`
}

// MessagePatch holds the fields UpdateMessage merges into a message.
// Nil fields are left untouched.
type MessagePatch struct {
	Content *string
	Pending *bool
}

// NewMessageID builds a "<role>_<unix-millis>" identifier
func NewMessageID(role MessageRole, at time.Time) string {
	return fmt.Sprintf("%s_%d", role, at.UnixMilli())
}

// Clone returns a deep copy of the message
func (m Message) Clone() Message {
	if m.Attachment != nil {
		att := *m.Attachment
		m.Attachment = &att
	}
	return m
}
