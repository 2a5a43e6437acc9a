package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrMessageNotEditable = errors.New("only user messages can be edited")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrSessionBusy        = errors.New("a response is already pending for this session")
	ErrInvalidTheme       = errors.New("theme must be light or dark")
	ErrEmptyAPIKey        = errors.New("api key is empty")
)
