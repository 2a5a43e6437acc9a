package domain

import (
	"strconv"
	"time"

	"github.com/rivo/uniseg"
)

const (
	DefaultSessionTitle = "New Conversation"
	titleMaxChars       = 25
	titleEllipsis       = "..."
	createdDateLayout   = "1/2/2006"
)

// Session represents one conversation thread
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedDate string    `json:"createdDate"`
	Messages    []Message `json:"messages"`
}

// NewSession creates an empty session stamped with the given time
func NewSession(at time.Time) *Session {
	return &Session{
		ID:          strconv.FormatInt(at.UnixMilli(), 10),
		Title:       DefaultSessionTitle,
		CreatedDate: at.Format(createdDateLayout),
		Messages:    []Message{},
	}
}

// HasMessage reports whether a message with the id exists in the session
func (s *Session) HasMessage(id string) bool {
	return s.MessageIndex(id) >= 0
}

// MessageIndex returns the position of the message with the id, or -1
func (s *Session) MessageIndex(id string) int {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	return &out
}

// TitleFromContent derives a session title from the first message content.
// Characters are counted as grapheme clusters so emoji and combining marks are never split.
func TitleFromContent(content string) string {
	if content == "" {
		return DefaultSessionTitle
	}

	var (
		title = make([]byte, 0, len(content))
		count int
		state = -1
		rest  = content
		chunk string
	)
	for len(rest) > 0 {
		if count == titleMaxChars {
			return string(title) + titleEllipsis
		}
		chunk, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		title = append(title, chunk...)
		count++
	}
	return string(title)
}
