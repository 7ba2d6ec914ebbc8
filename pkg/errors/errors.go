// Package errors defines the sentinel errors and typed error wrappers shared
// by the engine, its stores and the HTTP layer.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrIndexWrite       = errors.New("index write failed")
	ErrIndexRead        = errors.New("index read failed")
	ErrClosed           = errors.New("engine closed")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

// IndexWriteError reports a tokenization or storage failure during insert.
// No engine state changes when it is returned.
type IndexWriteError struct {
	Op  string
	Err error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write (%s): %v", e.Op, e.Err)
}

func (e *IndexWriteError) Unwrap() []error {
	return []error{ErrIndexWrite, e.Err}
}

// IndexReadError reports a failure while reading stored state during a
// rebuild or a search.
type IndexReadError struct {
	Op  string
	Err error
}

func (e *IndexReadError) Error() string {
	return fmt.Sprintf("index read (%s): %v", e.Op, e.Err)
}

func (e *IndexReadError) Unwrap() []error {
	return []error{ErrIndexRead, e.Err}
}

func NewWriteError(op string, err error) *IndexWriteError {
	return &IndexWriteError{Op: op, Err: err}
}

func NewReadError(op string, err error) *IndexReadError {
	return &IndexReadError{Op: op, Err: err}
}

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
