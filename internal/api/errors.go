package api

import (
	"errors"
	"fmt"

	"github.com/alpost/backend/internal/forum"
)

// Application error codes, in the JSON-RPC server error range
const (
	ErrServerError     = -32000
	ErrUnauthenticated = -32001
	ErrUnauthorized    = -32003
	ErrNotFound        = -32004
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
	Data    interface{}
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// fieldError is the data payload of an invalid params error
type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// toAPIError classifies a handler error. Domain sentinels map onto their
// codes; anything else is a server error whose detail stays in the logs.
func toAPIError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var inputErr *forum.InputError
	switch {
	case errors.As(err, &inputErr):
		return &Error{
			Code:    ErrInvalidParams,
			Message: "Invalid params",
			Data:    fieldError{Field: inputErr.Field, Message: inputErr.Message},
		}
	case errors.Is(err, forum.ErrInvalidInput):
		return &Error{Code: ErrInvalidParams, Message: "Invalid params", Data: err.Error()}
	case errors.Is(err, forum.ErrUnauthenticated):
		return NewError(ErrUnauthenticated, "not authenticated")
	case errors.Is(err, forum.ErrUnauthorized):
		return NewError(ErrUnauthorized, "not authorized")
	case errors.Is(err, forum.ErrNotFound):
		return NewError(ErrNotFound, "not found")
	case errors.Is(err, forum.ErrTransactionFailed):
		return NewError(ErrServerError, "transaction failed")
	default:
		return NewError(ErrServerError, "Server error")
	}
}
