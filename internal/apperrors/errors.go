package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeInvalidProgression  Code = "INVALID_PROGRESSION"
	CodeInvalidInitialLevel Code = "INVALID_INITIAL_LEVEL"
	CodeInvalidRole         Code = "INVALID_ROLE"
	CodeConflict            Code = "CONFLICT"
	CodeForbidden           Code = "FORBIDDEN"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeInternal            Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeValidation:          http.StatusBadRequest,
	CodeInvalidTransition:   http.StatusBadRequest,
	CodeInvalidProgression:  http.StatusBadRequest,
	CodeInvalidInitialLevel: http.StatusBadRequest,
	CodeInvalidRole:         http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeConflict:            http.StatusConflict,
	CodeRateLimited:         http.StatusTooManyRequests,
	CodeInternal:            http.StatusInternalServerError,
}

// AppError is the typed failure returned by services. The HTTP layer maps
// it to a status code through HTTPStatus.
type AppError struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	IDs     []uint            `json:"ids,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Status() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewValidation(message string, fields map[string]string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Fields: fields}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func NewInvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot change status from %q to %q", from, to),
	}
}

func NewInvalidProgression(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidProgression,
		Message: fmt.Sprintf("cannot progress directly from %s to %s", from, to),
	}
}

func NewInvalidInitialLevel(first string) *AppError {
	return &AppError{
		Code:    CodeInvalidInitialLevel,
		Message: fmt.Sprintf("new interns must start at %s level", first),
	}
}

func NewInvalidRole(role string, valid []string) *AppError {
	return &AppError{
		Code:    CodeInvalidRole,
		Message: fmt.Sprintf("invalid role %q, expected one of: %s", role, strings.Join(valid, ", ")),
	}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewRateLimited(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: message}
}

// Wrap marks err as an internal failure. AppErrors pass through untouched.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

func (e *AppError) WithIDs(ids []uint) *AppError {
	e.IDs = ids
	return e
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsCode(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status()
	}
	return http.StatusInternalServerError
}
