// Package errors provides the error taxonomy shared by the LIGOLW decoders,
// the file loader and the exporters.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates an element or column was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformed indicates an element whose content or attributes cannot be decoded
	ErrMalformed = errors.New("malformed input")
	// ErrSchemaMismatch indicates a row does not have the shape an unpacking spec expects
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrCallbackAbort indicates a row callback stopped a table decode
	ErrCallbackAbort = errors.New("row callback aborted")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "Table", "Param", "column")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation (may be redacted)
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is reports ErrInvalidInput regardless of the wrapped cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MalformedError reports an element that could not be decoded. Element is
// the tag (Table, Column, Stream, Array, Dim, Param, Time), Name is the
// element's Name attribute when known and Attribute names the offending
// attribute, if any.
type MalformedError struct {
	Element   string
	Name      string
	Attribute string
	Message   string
	Err       error
}

func (e *MalformedError) Error() string {
	var b strings.Builder
	b.WriteString("malformed ")
	b.WriteString(e.Element)
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Attribute != "" {
		fmt.Fprintf(&b, " (attribute %s)", e.Attribute)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports ErrMalformed regardless of the wrapped cause.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError is returned by row unpacking. Index is the 1-based
// position of the offending entry in the caller's unpacking spec.
type SchemaMismatchError struct {
	Index    int
	Column   string
	Missing  bool
	Expected string
	Actual   string
}

func (e *SchemaMismatchError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing required column %q (spec entry %d)", e.Column, e.Index)
	}
	return fmt.Sprintf("incorrect type for column %q (spec entry %d): want %s, have %s",
		e.Column, e.Index, e.Expected, e.Actual)
}

// Code returns the signed spec position: positive for a missing column,
// negative for a type mismatch.
func (e *SchemaMismatchError) Code() int {
	if e.Missing {
		return e.Index
	}
	return -e.Index
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

// ExtraColumnsError lists table columns an unpacking spec did not account for.
type ExtraColumnsError struct {
	Columns []string
}

func (e *ExtraColumnsError) Error() string {
	return fmt.Sprintf("table has columns not named by the unpacking spec: %s", strings.Join(e.Columns, ", "))
}

func (e *ExtraColumnsError) Unwrap() error {
	return ErrSchemaMismatch
}

// CallbackAbortError reports a row callback failure. Row is the 0-based
// index of the row being delivered when the callback failed.
type CallbackAbortError struct {
	Table string
	Row   int
	Err   error
}

func (e *CallbackAbortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("table %q: row %d: callback aborted: %v", e.Table, e.Row, e.Err)
	}
	return fmt.Sprintf("table %q: row %d: callback aborted", e.Table, e.Row)
}

// Is reports ErrCallbackAbort regardless of the wrapped cause.
func (e *CallbackAbortError) Is(target error) bool {
	return target == ErrCallbackAbort
}

func (e *CallbackAbortError) Unwrap() error {
	return e.Err
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "XML", "gzip")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

// Is reports ErrInvalidInput regardless of the wrapped cause.
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewMalformed creates a MalformedError
func NewMalformed(element, name, attribute, message string) *MalformedError {
	return &MalformedError{
		Element:   element,
		Name:      name,
		Attribute: attribute,
		Message:   message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
