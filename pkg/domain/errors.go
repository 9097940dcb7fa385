package domain

import (
	"errors"
	"fmt"
)

// ErrSpecNotFound is returned by spec stores when a session has no
// specification loaded.
var ErrSpecNotFound = errors.New("specification not found")

// FormatError reports an unparseable or unsupported raw document.
// It wraps the underlying syntax failure; low-level parser errors never
// cross the decode boundary undecorated.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unsupported format %q", e.Format)
	}
	return fmt.Sprintf("failed to parse %s document: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// SpecError reports a structural violation in a specification: missing
// root id, missing node id, unknown child reference, or conflicting
// duplicate declarations.
type SpecError struct {
	Msg string
}

func (e *SpecError) Error() string { return e.Msg }

// Specf builds a SpecError from a format string.
func Specf(format string, args ...any) *SpecError {
	return &SpecError{Msg: fmt.Sprintf(format, args...)}
}

// MissingValueError reports that evaluation reached a leaf lacking a
// required numeric field.
type MissingValueError struct {
	NodeID string
	Field  string // "prob" or "impact"
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("leaf %q is missing %s", e.NodeID, e.Field)
}

// InvalidNodeError reports an unknown node kind encountered during
// evaluation.
type InvalidNodeError struct {
	NodeID string
	Kind   Kind
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("node %q has unknown kind %q", e.NodeID, e.Kind)
}

// NotFoundError reports that a sensitivity target is absent or not a leaf.
type NotFoundError struct {
	NodeID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %q is not a known leaf", e.NodeID)
}

// CycleError reports that evaluation revisited a node already on the
// current path, or exceeded the recursion depth bound. The node mapping is
// expected to form a rooted tree; anything else is rejected rather than
// recursed into unboundedly.
type CycleError struct {
	NodeID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected at node %q", e.NodeID)
}
