// Package errors defines the error kinds the engine surfaces to callers.
// Per-declaration malformedness never produces an error; only hard input
// failures (unreadable files, undecodable index payloads) do.
package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"
)

// ErrorType classifies engine errors.
type ErrorType string

const (
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeIndex        ErrorType = "index"
	ErrorTypeConfig       ErrorType = "config"
)

// FileError represents a failure to read a source or index file.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error with context.
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func isPermissionError(err error) bool {
	return stderrors.Is(err, fs.ErrPermission)
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// IndexError represents a malformed syntax-index payload.
type IndexError struct {
	Type       ErrorType
	Path       string
	Underlying error
	Timestamp  time.Time
}

// NewIndexError creates a new index error
func NewIndexError(path string, err error) *IndexError {
	return &IndexError{
		Type:       ErrorTypeIndex,
		Path:       path,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *IndexError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid syntax index: %v", e.Underlying)
	}
	return fmt.Sprintf("invalid syntax index %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *IndexError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}
