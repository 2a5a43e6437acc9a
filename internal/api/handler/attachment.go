package handler

import (
	"io"
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AttachmentHandler serves stored attachment blobs
type AttachmentHandler struct {
	blobs domain.BlobStore
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(blobs domain.BlobStore) *AttachmentHandler {
	return &AttachmentHandler{blobs: blobs}
}

// Serve streams one attachment
func (h *AttachmentHandler) Serve(w http.ResponseWriter, r *http.Request) {
	body, mimeType, err := h.blobs.Open(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "blob"))
	if err != nil {
		response.NotFound(w, "attachment not found")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Warn().Err(err).Msg("failed to stream attachment")
	}
}
