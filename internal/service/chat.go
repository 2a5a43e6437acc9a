package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/llm"
	"github.com/rs/zerolog/log"
)

// Notices shown to the user next to the conversation
const (
	NoticeUnexpectedError = "An unexpected error occurred. Please try again."
	NoticeMessageEdited   = "Message updated. Send a message to get a new response."
)

const (
	defaultRevealCodeDelay = 300 * time.Millisecond
	defaultRevealMaxDelay  = 500 * time.Millisecond
	codeFence              = "```"
)

// SendStatus is the terminal state of a send
type SendStatus string

const (
	StatusCompleted SendStatus = "completed"
	StatusFailed    SendStatus = "failed"
)

// ChatConfig tunes the orchestration
type ChatConfig struct {
	SystemPrompt    string
	RevealCodeDelay time.Duration
	RevealMaxDelay  time.Duration
}

// UploadedFile is a file submitted together with a message
type UploadedFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// SendMessageInput is a user submission
type SendMessageInput struct {
	// SessionID defaults to the active session when empty
	SessionID string
	Text      string
	File      *UploadedFile
}

// SendMessageOutput describes the outcome of a send
type SendMessageOutput struct {
	Status      SendStatus      `json:"status"`
	SessionID   string          `json:"session_id"`
	UserMessage domain.Message  `json:"user_message"`
	Reply       *domain.Message `json:"reply,omitempty"`
	Notice      string          `json:"notice,omitempty"`
	// RevealAfter is how long the reply stays pending before it is shown in full
	RevealAfter   time.Duration `json:"-"`
	RevealAfterMS int64         `json:"reveal_after_ms"`
}

// EditMessageOutput describes the outcome of an edit
type EditMessageOutput struct {
	Session   *domain.Session `json:"session"`
	Discarded int             `json:"discarded"`
	Notice    string          `json:"notice"`
}

// ChatService orchestrates sends and edits on top of the session store
type ChatService struct {
	sessions  *SessionStore
	completer llm.Completer
	blobs     domain.BlobStore
	cfg       ChatConfig

	mu   sync.Mutex
	busy map[string]struct{}

	afterFunc func(d time.Duration, f func())
}

// NewChatService creates a new chat service
func NewChatService(sessions *SessionStore, completer llm.Completer, blobs domain.BlobStore, cfg ChatConfig) *ChatService {
	if cfg.RevealCodeDelay <= 0 {
		cfg.RevealCodeDelay = defaultRevealCodeDelay
	}
	if cfg.RevealMaxDelay <= 0 {
		cfg.RevealMaxDelay = defaultRevealMaxDelay
	}
	return &ChatService{
		sessions:  sessions,
		completer: completer,
		blobs:     blobs,
		cfg:       cfg,
		busy:      make(map[string]struct{}),
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// RevealDelay returns how long a reply stays pending before it is fully revealed
func RevealDelay(text string, codeDelay, maxDelay time.Duration) time.Duration {
	if strings.Contains(text, codeFence) {
		return codeDelay
	}
	d := time.Duration(utf8.RuneCountInString(text)) * time.Millisecond
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// SendMessage appends the user turn, asks the completer for a reply and
// stores it behind a pending placeholder.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if strings.TrimSpace(in.Text) == "" && in.File == nil {
		return nil, domain.ErrEmptyMessage
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = s.sessions.ActiveID()
	}
	if _, err := s.sessions.Session(sessionID); err != nil {
		return nil, err
	}

	if !s.acquire(sessionID) {
		return nil, domain.ErrSessionBusy
	}
	released := false
	release := func() {
		if !released {
			s.release(sessionID)
			released = true
		}
	}
	defer release()

	userMsg := domain.Message{
		Content: in.Text,
		Role:    domain.RoleUser,
	}

	var file *llm.File
	if in.File != nil {
		file = &llm.File{
			Name:     in.File.Name,
			MimeType: in.File.MimeType,
			Data:     in.File.Data,
		}
		file.MimeType = llm.DetectMimeType(file)

		url, err := s.blobs.Put(ctx, sessionID, in.File.Name, in.File.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		userMsg.Attachment = &domain.Attachment{
			Name:     in.File.Name,
			URL:      url,
			MimeType: file.MimeType,
		}
	}

	stored, err := s.sessions.AppendMessage(ctx, sessionID, userMsg)
	if err != nil {
		if userMsg.Attachment != nil {
			s.releaseBlob(ctx, userMsg.Attachment.URL)
		}
		return nil, err
	}

	out := &SendMessageOutput{
		SessionID:   sessionID,
		UserMessage: stored,
	}

	request, err := s.requestMessages(sessionID)
	if err != nil {
		return nil, err
	}

	placeholder, err := s.sessions.AppendMessage(ctx, sessionID, domain.Message{
		Role:    domain.RoleAssistant,
		Pending: true,
	})
	if err != nil {
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, request, file)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("completion did not settle")
		if rmErr := s.sessions.RemoveMessage(context.WithoutCancel(ctx), sessionID, placeholder.ID); rmErr != nil && !errors.Is(rmErr, domain.ErrSessionNotFound) {
			log.Error().Err(rmErr).Msg("failed to discard pending reply")
		}
		out.Status = StatusFailed
		out.Notice = NoticeUnexpectedError
		return out, nil
	}

	if err := s.sessions.UpdateMessage(ctx, sessionID, placeholder.ID, domain.MessagePatch{Content: &reply}); err != nil {
		// Session deleted while the request was in flight
		log.Warn().Err(err).Str("session_id", sessionID).Msg("reply arrived for a removed message")
		out.Status = StatusFailed
		out.Notice = NoticeUnexpectedError
		return out, nil
	}

	// Busy clears on arrival; the reveal below does not block new sends
	release()

	delay := RevealDelay(reply, s.cfg.RevealCodeDelay, s.cfg.RevealMaxDelay)
	s.afterFunc(delay, func() {
		done := false
		if err := s.sessions.UpdateMessage(context.Background(), sessionID, placeholder.ID, domain.MessagePatch{Pending: &done}); err != nil {
			log.Debug().Err(err).Str("message_id", placeholder.ID).Msg("reveal target gone")
		}
	})

	placeholder.Content = reply
	out.Status = StatusCompleted
	out.Reply = &placeholder
	out.RevealAfter = delay
	out.RevealAfterMS = delay.Milliseconds()
	return out, nil
}

// requestMessages builds the provider request list for a session
func (s *ChatService) requestMessages(sessionID string) ([]llm.ChatMessage, error) {
	sess, err := s.sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.ChatMessage, 0, len(sess.Messages)+1)
	if s.cfg.SystemPrompt != "" {
		messages = append(messages, llm.ChatMessage{
			Role:    llm.RoleSystem,
			Content: llm.TextContent(s.cfg.SystemPrompt),
		})
	}
	for _, m := range sess.Messages {
		messages = append(messages, llm.ChatMessage{
			Role:    llm.Role(m.Role),
			Content: llm.TextContent(m.Content),
		})
	}
	return messages, nil
}

// EditMessage replaces a user message and drops everything after it.
// A session that still awaits a reply cannot be edited.
func (s *ChatService) EditMessage(ctx context.Context, sessionID, messageID, content string) (*EditMessageOutput, error) {
	if !s.acquire(sessionID) {
		return nil, domain.ErrSessionBusy
	}
	defer s.release(sessionID)

	discarded, err := s.sessions.EditUserMessage(ctx, sessionID, messageID, content)
	if err != nil {
		return nil, err
	}

	for _, m := range discarded {
		if m.Attachment != nil {
			s.releaseBlob(ctx, m.Attachment.URL)
		}
	}

	sess, err := s.sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return &EditMessageOutput{
		Session:   sess,
		Discarded: len(discarded),
		Notice:    NoticeMessageEdited,
	}, nil
}

func (s *ChatService) releaseBlob(ctx context.Context, url string) {
	if err := s.blobs.Release(context.WithoutCancel(ctx), url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to release attachment")
	}
}

// CreateSession starts a new conversation and makes it active
func (s *ChatService) CreateSession(ctx context.Context) (*domain.Session, error) {
	id := s.sessions.CreateSession(ctx)
	return s.sessions.Session(id)
}

// SelectSession changes the active conversation
func (s *ChatService) SelectSession(id string) (*domain.Session, error) {
	if err := s.sessions.SelectSession(id); err != nil {
		return nil, err
	}
	return s.sessions.Session(id)
}

// DeleteSession removes a conversation and its attachments
func (s *ChatService) DeleteSession(ctx context.Context, id string) error {
	if err := s.sessions.DeleteSession(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.ReleaseSession(ctx, id); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("failed to release session attachments")
	}
	return nil
}

// Sessions returns every conversation together with the active id
func (s *ChatService) Sessions() ([]*domain.Session, string) {
	return s.sessions.Sessions(), s.sessions.ActiveID()
}

// Session returns one conversation
func (s *ChatService) Session(id string) (*domain.Session, error) {
	return s.sessions.Session(id)
}

// ActiveSession returns the active conversation
func (s *ChatService) ActiveSession() *domain.Session {
	return s.sessions.Active()
}

// IsBusy reports whether a session awaits a reply
func (s *ChatService) IsBusy(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[sessionID]
	return ok
}

func (s *ChatService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.busy[sessionID]; ok {
		return false
	}
	s.busy[sessionID] = struct{}{}
	return true
}

func (s *ChatService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, sessionID)
}
