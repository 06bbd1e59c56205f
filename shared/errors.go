package shared

import (
	"errors"
	"net/http"
)

// ErrRouteNotFound marks the "route not found" class of upstream failure,
// used to trigger the legacy enrollment endpoint fallback.
var ErrRouteNotFound = errors.New("route not found")

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return NewAppError(http.StatusForbidden, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message)
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
