package types

import (
	"errors"
	"fmt"
)

// ValidationError indicates a file that exists on disk but cannot be parsed
// or is missing required fields. It is never auto-repaired: callers decide
// whether to reinitialize from the project definition.
type ValidationError struct {
	Path   string // file that failed validation
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure with enough context to act on.
// Recoverable distinguishes transient failures (worth retrying) from
// permanent ones like permission errors.
type IOError struct {
	Op          string // operation that failed, e.g. "write", "rename"
	Path        string
	Recoverable bool
	Err         error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NotFoundError indicates an unknown unit id, backup id, or a missing
// document for a targeted patch.
type NotFoundError struct {
	Kind string // "unit", "backup", "document"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsRecoverable reports whether err is an IOError marked recoverable.
// Non-IOErrors are never recoverable.
func IsRecoverable(err error) bool {
	var ioe *IOError
	if errors.As(err, &ioe) {
		return ioe.Recoverable
	}
	return false
}
