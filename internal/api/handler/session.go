package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/service"
	"github.com/go-chi/chi/v5"
)

// SessionHandler handles conversation endpoints
type SessionHandler struct {
	chatService *service.ChatService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService *service.ChatService) *SessionHandler {
	return &SessionHandler{chatService: chatService}
}

type sessionList struct {
	Sessions []*domain.Session `json:"sessions"`
	ActiveID string            `json:"active_id"`
}

// List returns all sessions and the active id
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, activeID := h.chatService.Sessions()
	response.OK(w, sessionList{Sessions: sessions, ActiveID: activeID})
}

// Create starts a new session and makes it active
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.CreateSession(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Created(w, session)
}

// Get returns one session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, session)
}

// Delete removes a session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		serviceError(w, err)
		return
	}
	response.NoContent(w)
}

// Select makes a session active
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatService.SelectSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, session)
}

type editMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// EditMessage replaces a user message and truncates the conversation after it
func (h *SessionHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	var input editMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		validationError(w, err)
		return
	}

	out, err := h.chatService.EditMessage(
		r.Context(),
		chi.URLParam(r, "sessionID"),
		chi.URLParam(r, "messageID"),
		input.Content,
	)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, out)
}
