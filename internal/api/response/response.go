// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Envelope wraps every JSON body. Exactly one of Data and Error is set.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the error member of the envelope. Message is shown to the user
// as a notice; Fields carries per-field validation failures.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var codes = map[int]string{
	http.StatusBadRequest:            "bad_request",
	http.StatusUnauthorized:          "unauthorized",
	http.StatusNotFound:              "not_found",
	http.StatusConflict:              "conflict",
	http.StatusRequestEntityTooLarge: "too_large",
	http.StatusTooManyRequests:       "rate_limited",
	http.StatusServiceUnavailable:    "unavailable",
}

// Code returns the machine-readable error code of a status
func Code(status int) string {
	if code, ok := codes[status]; ok {
		return code
	}
	return "internal"
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Int("status", status).Msg("failed to write response")
	}
}

// JSON sends data inside a successful envelope
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// Error sends an error envelope with a message
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{
		Error: &APIError{Code: Code(status), Message: message},
	})
}

// ValidationError sends a 400 listing the offending fields
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	write(w, http.StatusBadRequest, Envelope{
		Error: &APIError{
			Code:    Code(http.StatusBadRequest),
			Message: "request validation failed",
			Fields:  fields,
		},
	})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict is used when a session still awaits its previous reply
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
