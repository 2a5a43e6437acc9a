package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// SessionStoreOption configures a SessionStore
type SessionStoreOption func(*SessionStore)

// WithClock overrides the time source used for ids and creation dates
func WithClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// SessionStore owns the collection of sessions and the active selection.
// Every structural change writes the whole collection to the KV store.
type SessionStore struct {
	mu       sync.RWMutex
	kv       domain.KVStore
	sessions []*domain.Session
	activeID string
	now      func() time.Time
}

// NewSessionStore loads persisted sessions and guarantees at least one exists
func NewSessionStore(ctx context.Context, kv domain.KVStore, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		kv:  kv,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sessions = s.load(ctx)
	if len(s.sessions) == 0 {
		s.sessions = []*domain.Session{s.newSessionLocked()}
		s.persistLocked(ctx)
	}
	s.activeID = s.sessions[0].ID

	return s
}

func (s *SessionStore) load(ctx context.Context) []*domain.Session {
	raw, err := s.kv.Get(ctx, domain.KeySessions)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Msg("failed to read stored sessions")
		}
		return nil
	}

	var sessions []*domain.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		log.Error().Err(err).Msg("stored sessions are malformed, starting empty")
		return nil
	}

	loaded := sessions[:0]
	for _, sess := range sessions {
		if sess == nil || sess.ID == "" {
			continue
		}
		if sess.Messages == nil {
			sess.Messages = []domain.Message{}
		}
		// A reveal interrupted by shutdown never resumes
		for i := range sess.Messages {
			sess.Messages[i].Pending = false
		}
		loaded = append(loaded, sess)
	}

	log.Debug().Int("sessions", len(loaded)).Msg("sessions loaded")
	return loaded
}

// CreateSession prepends a new empty session, activates it and returns its id
func (s *SessionStore) CreateSession(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.newSessionLocked()
	s.sessions = append([]*domain.Session{sess}, s.sessions...)
	s.activeID = sess.ID
	s.persistLocked(ctx)

	return sess.ID
}

// DeleteSession removes a session. When the active session is removed the
// first remaining one becomes active, or a fresh one is created.
func (s *SessionStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.ErrSessionNotFound
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if len(s.sessions) == 0 {
		s.sessions = []*domain.Session{s.newSessionLocked()}
	}
	if s.activeID == id {
		s.activeID = s.sessions[0].ID
	}
	s.persistLocked(ctx)

	return nil
}

// SelectSession makes id the active session
func (s *SessionStore) SelectSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return domain.ErrSessionNotFound
	}
	s.activeID = id
	return nil
}

// AppendMessage adds msg to the end of a session and returns the stored message.
// An empty ID is replaced by a unique "<role>_<unix-millis>" id.
// The first message of a session sets its title.
func (s *SessionStore) AppendMessage(ctx context.Context, sessionID string, msg domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(sessionID)
	if sess == nil {
		return domain.Message{}, domain.ErrSessionNotFound
	}

	if msg.ID == "" || sess.HasMessage(msg.ID) {
		msg.ID = s.messageIDLocked(sess, msg.Role)
	}
	msg = msg.Clone()

	if len(sess.Messages) == 0 {
		sess.Title = domain.TitleFromContent(msg.Content)
	}
	sess.Messages = append(sess.Messages, msg)
	s.persistLocked(ctx)

	return msg.Clone(), nil
}

// UpdateMessage merges patch into a message. Only content changes are persisted.
func (s *SessionStore) UpdateMessage(ctx context.Context, sessionID, messageID string, patch domain.MessagePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(sessionID)
	if sess == nil {
		return domain.ErrSessionNotFound
	}
	idx := sess.MessageIndex(messageID)
	if idx < 0 {
		return domain.ErrMessageNotFound
	}

	msg := &sess.Messages[idx]
	contentChanged := false
	if patch.Content != nil && *patch.Content != msg.Content {
		msg.Content = *patch.Content
		contentChanged = true
	}
	if patch.Pending != nil {
		msg.Pending = *patch.Pending
	}

	if contentChanged {
		s.persistLocked(ctx)
	}
	return nil
}

// RemoveMessage drops a single message from a session
func (s *SessionStore) RemoveMessage(ctx context.Context, sessionID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(sessionID)
	if sess == nil {
		return domain.ErrSessionNotFound
	}
	idx := sess.MessageIndex(messageID)
	if idx < 0 {
		return domain.ErrMessageNotFound
	}

	sess.Messages = append(sess.Messages[:idx], sess.Messages[idx+1:]...)
	s.persistLocked(ctx)
	return nil
}

// EditUserMessage replaces the content of a user message and truncates the
// conversation after it. The discarded messages are returned.
func (s *SessionStore) EditUserMessage(ctx context.Context, sessionID, messageID, content string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(sessionID)
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	idx := sess.MessageIndex(messageID)
	if idx < 0 {
		return nil, domain.ErrMessageNotFound
	}
	if sess.Messages[idx].Role != domain.RoleUser {
		return nil, domain.ErrMessageNotEditable
	}

	discarded := make([]domain.Message, 0, len(sess.Messages)-idx-1)
	for _, m := range sess.Messages[idx+1:] {
		discarded = append(discarded, m.Clone())
	}

	sess.Messages[idx].Content = content
	sess.Messages = sess.Messages[:idx+1]
	s.persistLocked(ctx)

	return discarded, nil
}

// Session returns a copy of the session with the id
func (s *SessionStore) Session(id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := s.sessionLocked(id)
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Sessions returns copies of all sessions, newest first
func (s *SessionStore) Sessions() []*domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// ActiveID returns the id of the active session
func (s *SessionStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the active session
func (s *SessionStore) Active() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionLocked(s.activeID).Clone()
}

func (s *SessionStore) newSessionLocked() *domain.Session {
	at := s.now()
	sess := domain.NewSession(at)
	for s.indexLocked(sess.ID) >= 0 {
		at = at.Add(time.Millisecond)
		sess.ID = strconv.FormatInt(at.UnixMilli(), 10)
	}
	return sess
}

func (s *SessionStore) messageIDLocked(sess *domain.Session, role domain.MessageRole) string {
	at := s.now()
	id := domain.NewMessageID(role, at)
	for sess.HasMessage(id) {
		at = at.Add(time.Millisecond)
		id = domain.NewMessageID(role, at)
	}
	return id
}

func (s *SessionStore) indexLocked(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func (s *SessionStore) sessionLocked(id string) *domain.Session {
	if idx := s.indexLocked(id); idx >= 0 {
		return s.sessions[idx]
	}
	return nil
}

// persistLocked writes the collection while the write lock is held so that
// writes reach the store in mutation order. Failures are logged only.
func (s *SessionStore) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode sessions")
		return
	}
	if err := s.kv.Set(context.WithoutCancel(ctx), domain.KeySessions, string(data)); err != nil {
		log.Error().Err(fmt.Errorf("persist sessions: %w", err)).Msg("failed to save sessions")
	}
}
