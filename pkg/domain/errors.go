package domain

import (
	"errors"
	"fmt"
)

// ErrDanglingReference matches any *DanglingReferenceError via errors.Is.
var ErrDanglingReference = errors.New("dangling reference")

// ErrInvalidOperation matches any *InvalidOperationError via errors.Is.
var ErrInvalidOperation = errors.New("invalid operation")

// ErrAutomationNotFound is returned when an automation ID cannot be found in the store.
var ErrAutomationNotFound = errors.New("automation not found")

// ErrTemplateNotFound is returned when a template ID is not in the catalogue.
var ErrTemplateNotFound = errors.New("template not found")

// ErrSessionNotFound is returned when an editor session ID is not open.
var ErrSessionNotFound = errors.New("session not found")

// DanglingReferenceError rejects an edge whose endpoint is not in the graph.
type DanglingReferenceError struct {
	EdgeID string
	NodeID string
	End    string // "source" or "target"
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("edge %q: %s node %q does not exist", e.EdgeID, e.End, e.NodeID)
}

func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}

// InvalidOperationError rejects a malformed edit request.
type InvalidOperationError struct {
	Op     string
	Reason string
	Err    error // Optional cause (e.g. parameter validation errors)
}

func (e *InvalidOperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Op, e.Reason)
}

func (e *InvalidOperationError) Unwrap() error { return e.Err }

func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

func invalid(op, format string, args ...any) *InvalidOperationError {
	return &InvalidOperationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
