// Package errors defines the categorized error taxonomy of spec §7: every
// core operation either returns a structured result or a CategorizedError
// naming one of a closed set of failure kinds, so the RPC dispatcher and
// CLI can decide uniformly what's recoverable and what to surface to the
// caller.
package errors

import (
	"fmt"
	"time"
)

// Type classifies one failure per spec §7's taxonomy.
type Type string

const (
	TypeUnsupportedFile Type = "unsupported_file"
	TypeParse           Type = "parse"
	TypeIO              Type = "io"
	TypeVectorIndex     Type = "vector_index"
	TypeCheckpoint      Type = "checkpoint"
	TypeConfig          Type = "config"
	TypeToolArgument    Type = "tool_argument"
	TypeDispatch        Type = "dispatch"
)

// CategorizedError wraps an underlying error with the context spec §7
// expects the dispatcher to reason about: which operation failed, on what
// path, and whether the caller should retry.
type CategorizedError struct {
	Type        Type
	Operation   string
	Path        string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// New creates a CategorizedError for op, wrapping err.
func New(t Type, op string, err error) *CategorizedError {
	return &CategorizedError{
		Type:      t,
		Operation: op,
		Underlying: err,
		Timestamp: time.Now(),
	}
}

// WithPath attaches the file or directory the failure occurred on.
func (e *CategorizedError) WithPath(path string) *CategorizedError {
	e.Path = path
	return e
}

// WithRecoverable marks whether the caller can retry the same operation
// (e.g. a corrupt vector index rebuilds on next refresh) versus a
// permanent failure (e.g. a malformed tool argument).
func (e *CategorizedError) WithRecoverable(recoverable bool) *CategorizedError {
	e.Recoverable = recoverable
	return e
}

func (e *CategorizedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Type, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause.
func (e *CategorizedError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the caller should retry.
func (e *CategorizedError) IsRecoverable() bool {
	return e.Recoverable
}

// MultiError aggregates independent failures that did not abort a run into
// one error. Neither the walker nor the vector-index refresh builds one:
// the walker counts skipped files in its diagnostics and the refresh drops
// unreadable files.
type MultiError struct {
	Errors []error
}

// NewMultiError drops nil entries from errs.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
	}
}

// Unwrap supports errors.Is/errors.As over the full set (Go 1.20+ multi-error form).
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
