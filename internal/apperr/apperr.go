package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the single structured error carried from handlers and repos to the
// central response writer. Status is the HTTP status it maps to.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func (e *Error) WithErr(err error) *Error {
	return &Error{Status: e.Status, Code: e.Code, Message: e.Message, Err: err}
}

// Error codes
const (
	CodeValidation            = "VALIDATION"
	CodeNotAuthenticated      = "NOT_AUTHENTICATED"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeExpiredToken          = "EXPIRED_TOKEN"
	CodeStalePassword         = "STALE_PASSWORD"
	CodeUserGone              = "USER_GONE"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeIncorrectPassword     = "INCORRECT_PASSWORD"
	CodeInvalidOrExpiredToken = "INVALID_OR_EXPIRED_TOKEN"
	CodeEmailDelivery         = "EMAIL_DELIVERY"
	CodeInternal              = "INTERNAL_ERROR"
)

func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func NotAuthenticated(message string) *Error {
	return New(http.StatusUnauthorized, CodeNotAuthenticated, message)
}

func InvalidToken(message string) *Error {
	return New(http.StatusUnauthorized, CodeInvalidToken, message)
}

func ExpiredToken(message string) *Error {
	return New(http.StatusUnauthorized, CodeExpiredToken, message)
}

func StalePassword(message string) *Error {
	return New(http.StatusUnauthorized, CodeStalePassword, message)
}

func UserGone(message string) *Error {
	return New(http.StatusUnauthorized, CodeUserGone, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func IncorrectPassword(message string) *Error {
	return New(http.StatusBadRequest, CodeIncorrectPassword, message)
}

func InvalidOrExpiredToken(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidOrExpiredToken, message)
}

func EmailDelivery(message string, err error) *Error {
	return New(http.StatusInternalServerError, CodeEmailDelivery, message).WithErr(err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, "Something went very wrong!").WithErr(err)
}

// From extracts an *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsStatus reports whether err maps to the given HTTP status.
func IsStatus(err error, status int) bool {
	return From(err).Status == status
}
