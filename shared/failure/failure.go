package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that carries the HTTP status it should be reported with. The
// message is shown to clients; the optional cause is kept for logs and errors.Is.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	cause   error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	return e.cause
}

func New(code int, message string) error {
	return &Failure{Code: code, Message: message}
}

// Wrap reports message with code while keeping cause reachable through errors.Is.
func Wrap(code int, message string, cause error) error {
	return &Failure{Code: code, Message: message, cause: cause}
}

// BadRequest turns a validation error into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return Wrap(http.StatusBadRequest, err.Error(), err)
}

func BadRequestFromString(msg string) error {
	return New(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) error {
	return New(http.StatusForbidden, msg)
}

// NotFound reports a missing entity, e.g. NotFound("room not found").
func NotFound(msg string) error {
	return New(http.StatusNotFound, msg)
}

// Conflict reports a request that clashes with existing state, such as an occupied slot.
func Conflict(msg string) error {
	return New(http.StatusConflict, msg)
}

// InternalError hides err behind a generic 500 message. A nil err stays nil.
func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return Wrap(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), err)
}

// GetCode returns the status carried by err, 500 for anything else.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
