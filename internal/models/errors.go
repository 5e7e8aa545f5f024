package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindGeneration  ErrorKind = "generation"
	ErrorKindPersistence ErrorKind = "persistence"
	ErrorKindExternal    ErrorKind = "external"
	ErrorKindTimeout     ErrorKind = "timeout"
	ErrorKindInternal    ErrorKind = "internal"
)

// AppError is the coded error carried across service boundaries.
type AppError struct {
	Kind     ErrorKind              `json:"kind"`
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Cause    error                  `json:"-"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (appErr *AppError) Error() string {
	if appErr.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", appErr.Code, appErr.Message, appErr.Cause)
	}
	return fmt.Sprintf("%s: %s", appErr.Code, appErr.Message)
}

func (appErr *AppError) Unwrap() error {
	return appErr.Cause
}

func (appErr *AppError) WithCause(cause error) *AppError {
	appErr.Cause = cause
	return appErr
}

func (appErr *AppError) WithMetadata(key string, value interface{}) *AppError {
	if appErr.Metadata == nil {
		appErr.Metadata = make(map[string]interface{})
	}
	appErr.Metadata[key] = value
	return appErr
}

func newAppError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func NewValidationError(code, message string) *AppError {
	return newAppError(ErrorKindValidation, code, message)
}

func NewGenerationError(code, message string) *AppError {
	return newAppError(ErrorKindGeneration, code, message)
}

func NewPersistenceError(code, message string) *AppError {
	return newAppError(ErrorKindPersistence, code, message)
}

func NewExternalError(code, message string) *AppError {
	return newAppError(ErrorKindExternal, code, message)
}

func NewTimeoutError(code, message string) *AppError {
	return newAppError(ErrorKindTimeout, code, message)
}

func NewInternalError(code, message string) *AppError {
	return newAppError(ErrorKindInternal, code, message)
}

func WrapExternalError(cause error, code, message string) *AppError {
	return NewExternalError(code, message).WithCause(cause)
}

// KindOf reports the AppError kind of err, or ErrorKindInternal when err
// is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrorKindInternal
}

func IsValidation(err error) bool { return KindOf(err) == ErrorKindValidation }
func IsGeneration(err error) bool { return KindOf(err) == ErrorKindGeneration }
