package handler

import (
	"errors"
	"net/http"

	"github.com/Rrens/qorix-chat/internal/api/response"
	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// validationError writes field-level validation failures as a 400
func validationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		response.BadRequest(w, err.Error())
		return
	}

	fields := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			fields[e.Field()] = "field is required"
		case "oneof":
			fields[e.Field()] = "must be one of: " + e.Param()
		case "max":
			fields[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			fields[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	response.ValidationError(w, fields)
}

// serviceError maps domain errors to HTTP statuses
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrSessionBusy):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageNotEditable),
		errors.Is(err, domain.ErrInvalidTheme),
		errors.Is(err, domain.ErrEmptyAPIKey):
		response.BadRequest(w, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		response.InternalError(w, "internal server error")
	}
}
