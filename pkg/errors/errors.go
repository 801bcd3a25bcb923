// Package errors provides custom error types for locsync. Loaders and the
// correction ledger recover failures at their own boundary; these types let
// callers classify what went wrong (missing source, parse failure, store
// unreachable) without string matching.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates a data source could not be loaded.
	// Loaders downgrade this to an empty record set.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrStoreUnavailable indicates the correction store is unreachable.
	ErrStoreUnavailable = errors.New("correction store unavailable")

	// ErrMissingColumn indicates a tabular source lacks a required column.
	// The whole source is unusable; the run continues without it.
	ErrMissingColumn = errors.New("required column missing")

	// ErrUnauthorized indicates a store write was rejected for a bad token.
	ErrUnauthorized = errors.New("unauthorized")
)

// SourceError represents a failure loading one origin. It never aborts a
// reconciliation run; the orchestrator logs it and continues.
type SourceError struct {
	Source  string // "facility", "web-primary", "division", "service-area", "suppression"
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("source %s (%s): %s", e.Source, e.Path, e.Message)
	}
	return fmt.Sprintf("source %s: %s", e.Source, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// NewSourceError creates a new SourceError.
func NewSourceError(source, path string, err error) *SourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &SourceError{Source: source, Path: path, Message: message, Err: err}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "json", "csv"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// ValidationError represents a contract violation on caller-provided input.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IOError represents an error during I/O operations.
type IOError struct {
	Operation string // "read", "write", "fetch", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError.
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{Operation: operation, Path: path, Message: message, Err: err}
}

// StoreError represents a failure reading or writing the correction store.
type StoreError struct {
	Operation string // "load", "save", "merge"
	Backend   string // "file", "sqlite", "http"
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("correction store %s failed (%s backend): %v", e.Operation, e.Backend, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation, backend string, err error) *StoreError {
	return &StoreError{Operation: operation, Backend: backend, Err: err}
}

// Helper wrapping functions for common patterns.

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapSource wraps an error as a SourceError.
func WrapSource(source, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewSourceError(source, path, err)
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSourceUnavailable checks if an error marks an unloadable source.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsStoreUnavailable checks if an error marks an unreachable store.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsMissingColumn checks if an error marks a missing required column.
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}
