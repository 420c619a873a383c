package filegate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the addressed object does not exist
	ErrNotFound = errors.New("not found")
	// ErrUpstream is returned when the storage backend fails
	ErrUpstream = errors.New("upstream error")
	// ErrInvalidInput is returned when request input fails validation
	ErrInvalidInput = errors.New("invalid input")
)

// FieldErrorKind classifies a validation failure.
type FieldErrorKind string

const (
	KindOutOfRange        FieldErrorKind = "out_of_range"
	KindMutuallyExclusive FieldErrorKind = "mutually_exclusive_parameters"
	KindInvalidType       FieldErrorKind = "invalid_type"
	KindMissing           FieldErrorKind = "missing"
	KindInvalidValue      FieldErrorKind = "invalid_value"
)

// FieldError describes one rejected input.
type FieldError struct {
	Kind  FieldErrorKind
	Loc   []string
	Msg   string
	Input any
}

// ValidationError carries every field error found in a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = strings.Join(fe.Loc, ".") + ": " + fe.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is reports ErrInvalidInput as a match so callers can use errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError builds a ValidationError holding a single field error.
func NewValidationError(kind FieldErrorKind, loc []string, msg string, input any) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Kind: kind, Loc: loc, Msg: msg, Input: input}}}
}

// UpstreamError wraps a backend failure with the operation that hit it.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports ErrUpstream as a match so callers can use errors.Is.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Upstream wraps err as an UpstreamError. Not-found errors, validation errors
// and errors already marked upstream are returned unchanged.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUpstream) || errors.Is(err, ErrInvalidInput) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}
