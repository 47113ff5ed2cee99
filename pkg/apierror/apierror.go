// Package apierror defines the HTTP error values returned by the API and
// the single writer that turns them into JSON responses.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Error is an HTTP error with a JSON representation of
//
//	{"name":"HTTP403","status":403,"message":"...","errors":[...]}
type Error struct {
	Name    string   `json:"name"`
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error that is logged but never sent to
// the client.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func newError(status int, message string, errs []string) *Error {
	if errs == nil {
		errs = []string{}
	}
	return &Error{
		Name:    fmt.Sprintf("HTTP%d", status),
		Status:  status,
		Message: message,
		Errors:  errs,
	}
}

func BadRequest(message string, errs ...string) *Error {
	return newError(http.StatusBadRequest, message, errs)
}

func Unauthorized(message string, errs ...string) *Error {
	return newError(http.StatusUnauthorized, message, errs)
}

func Forbidden(message string, errs ...string) *Error {
	return newError(http.StatusForbidden, message, errs)
}

func NotFound(message string, errs ...string) *Error {
	return newError(http.StatusNotFound, message, errs)
}

func Conflict(message string, errs ...string) *Error {
	return newError(http.StatusConflict, message, errs)
}

func Internal(message string, cause error) *Error {
	return newError(http.StatusInternalServerError, message, nil).WithCause(cause)
}

// From returns err as an *Error. Anything that is not already an API error
// becomes an HTTP500 with a generic message.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("Unexpected error", err)
}

// Write sends err as a JSON error response. Server errors are logged.
func Write(w http.ResponseWriter, err error) {
	apiErr := From(err)
	if apiErr.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.Int("status", apiErr.Status),
			zap.String("message", apiErr.Message),
			zap.Error(apiErr.cause),
		)
	}

	body, _ := json.Marshal(apiErr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_, _ = w.Write(body)
}
