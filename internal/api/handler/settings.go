package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/service"
)

// SettingsHandler handles the stored preferences
type SettingsHandler struct {
	preferences *service.PreferencesService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(preferences *service.PreferencesService) *SettingsHandler {
	return &SettingsHandler{preferences: preferences}
}

// Get returns the current settings. The API key itself is never returned.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.preferences.Settings(r.Context()))
}

type apiKeyRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// SetAPIKey stores the provider API key
func (h *SettingsHandler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var input apiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		validationError(w, err)
		return
	}

	if err := h.preferences.SetAPIKey(r.Context(), input.APIKey); err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, h.preferences.Settings(r.Context()))
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// SetTheme stores the theme preference
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var input themeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		validationError(w, err)
		return
	}

	if err := h.preferences.SetTheme(r.Context(), domain.Theme(input.Theme)); err != nil {
		serviceError(w, err)
		return
	}
	response.OK(w, h.preferences.Settings(r.Context()))
}
