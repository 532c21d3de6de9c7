package internal

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Error kinds. Concrete errors wrap one of these with a user-facing message.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrNoPlan               = errors.New("no current meal plan")
	ErrGenerationInProgress = errors.New("meal plan generation already in progress")
	ErrInvalidCredential    = errors.New("invalid AI credential")
	ErrRateLimited          = errors.New("AI rate limited")
	ErrUpstream             = errors.New("AI service error")
	ErrEmptyCompletion      = errors.New("empty AI completion")
	ErrMalformedCompletion  = errors.New("malformed AI completion")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Wrap attaches a human-readable message to an error kind. errors.Is(err, kind)
// stays true and err.Error() is exactly msg.
func Wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func Wrapf(kind error, format string, args ...any) error {
	return Wrap(kind, fmt.Sprintf(format, args...))
}
