package services

import (
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed input fields by name.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports an operation against a non-existent id.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ReferenceResolutionError wraps a storage failure while resolving a
// natural-key reference. It aborts the enclosing transaction.
type ReferenceResolutionError struct {
	Kind string
	Key  string
	Err  error
}

func (e *ReferenceResolutionError) Error() string {
	return fmt.Sprintf("resolving %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *ReferenceResolutionError) Unwrap() error {
	return e.Err
}

// AttachmentError wraps a binary read/write failure. It is fatal to the
// enclosing transaction, never skipped.
type AttachmentError struct {
	Op  string
	Err error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %s: %v", e.Op, e.Err)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

// TransactionError wraps any statement failure inside a mutating
// transaction after rollback, carrying the underlying cause.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
