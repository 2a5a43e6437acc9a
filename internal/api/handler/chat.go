package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/service"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead leaves room for form fields around the file itself
const multipartOverhead = 1 << 20

// ChatHandler handles message submission
type ChatHandler struct {
	chatService *service.ChatService
	maxBytes    int64
}

// NewChatHandler creates a new chat handler. Files larger than maxBytes are rejected.
func NewChatHandler(chatService *service.ChatService, maxBytes int64) *ChatHandler {
	return &ChatHandler{chatService: chatService, maxBytes: maxBytes}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"max=100000"`
}

// Send submits a message to the session in the URL, or the active session.
// Accepts JSON {"text"} or multipart form fields "text" and "file".
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	input := service.SendMessageInput{
		SessionID: chi.URLParam(r, "sessionID"),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, h.tooLarge())
				return
			}
			response.BadRequest(w, "invalid multipart form")
			return
		}
		input.Text = r.FormValue("text")

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			if header.Size > h.maxBytes {
				response.Error(w, http.StatusRequestEntityTooLarge, h.tooLarge())
				return
			}
			data, err := io.ReadAll(file)
			if err != nil {
				response.BadRequest(w, "failed to read file")
				return
			}
			input.File = &service.UploadedFile{
				Name:     header.Filename,
				MimeType: header.Header.Get("Content-Type"),
				Data:     data,
			}
		} else if err != http.ErrMissingFile {
			response.BadRequest(w, "invalid file")
			return
		}
	} else {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			validationError(w, err)
			return
		}
		input.Text = req.Text
	}

	if input.File != nil && input.File.MimeType == "application/octet-stream" {
		// Browsers send this when they do not know the type; let it be sniffed
		input.File.MimeType = ""
	}

	out, err := h.chatService.SendMessage(r.Context(), input)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, out)
}

func (h *ChatHandler) tooLarge() string {
	return fmt.Sprintf("File size must be less than %dMB", h.maxBytes>>20)
}
