// Package errors provides custom error types for the center hub.
//
// This package defines domain-specific errors that help callers decide how
// to recover. None of them is fatal: the dashboard keeps serving the last
// good record set whatever goes wrong during a refresh.
package errors

import (
	stderrors "errors"
	"fmt"
)

// FetchError wraps failures that occur while downloading the spreadsheet export.
//
// This error is returned when:
//   - The HTTP request cannot be built or sent
//   - The export endpoint answers with a non-2xx status
//   - The response body cannot be read
//
// Recovery strategy: Surface one generic notice and keep the previous records
type FetchError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch error: %s: %v", msg, e.Err)
	}
	return fmt.Sprintf("fetch error: %s", msg)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error with context
func NewFetchError(msg string, err error) *FetchError {
	return &FetchError{Message: msg, Err: err}
}

// NewStatusError creates a fetch error for an unexpected HTTP status
func NewStatusError(status int) *FetchError {
	return &FetchError{Message: "unexpected status", StatusCode: status}
}

// InvalidSourceError indicates that a spreadsheet link or identifier was rejected.
//
// Recovery strategy: Ask for a valid link, leave the current source untouched
type InvalidSourceError struct {
	Input string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid spreadsheet source: %q", e.Input)
}

// NewInvalidSourceError creates a new invalid source error
func NewInvalidSourceError(input string) *InvalidSourceError {
	return &InvalidSourceError{Input: input}
}

// StorageError wraps settings persistence failures.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new storage error with context
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsFetch checks if the error chain contains a fetch error
func IsFetch(err error) bool {
	var fe *FetchError
	return stderrors.As(err, &fe)
}

// IsInvalidSource checks if the error chain contains an invalid source error
func IsInvalidSource(err error) bool {
	var ie *InvalidSourceError
	return stderrors.As(err, &ie)
}

// IsStorage checks if the error chain contains a storage error
func IsStorage(err error) bool {
	var se *StorageError
	return stderrors.As(err, &se)
}
