// Package ogm defines the error taxonomy for schema, query, and write operations.
package ogm

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaConflictError is returned when a kind is re-registered with a shape
// that differs from its first registration.
type SchemaConflictError struct {
	Kind   string
	Detail string
}

// Error returns the error message for SchemaConflictError.
func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict %s: %s", e.Kind, e.Detail)
}

// UnknownPropertyError is returned when a filter, ordering, or assignment
// references a property the kind does not declare. It is raised at build
// time, before any statement is executed.
type UnknownPropertyError struct {
	Kind     string
	Property string
}

// Error returns the error message for UnknownPropertyError.
func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("%s has no property %q", e.Kind, e.Property)
}

// UnknownRelationshipError is returned when a traversal or connect references
// a relationship the kind does not declare.
type UnknownRelationshipError struct {
	Kind         string
	Relationship string
}

// Error returns the error message for UnknownRelationshipError.
func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("%s has no relationship %q", e.Kind, e.Relationship)
}

// PropertyViolation describes one failed property validation.
type PropertyViolation struct {
	Property string
	Reason   string
}

func (v PropertyViolation) String() string {
	return v.Property + ": " + v.Reason
}

// ValidationError aggregates every property violation found during a save,
// so a single failed save reports all offending properties at once.
type ValidationError struct {
	Kind       string
	Violations []PropertyViolation
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Kind, strings.Join(parts, "; "))
}

// InvalidChoiceError is returned when a value is not a member of an
// enumerated property's allowed set.
type InvalidChoiceError struct {
	Value   any
	Allowed []string
}

// Error returns the error message for InvalidChoiceError.
func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("%v is not one of [%s]", e.Value, strings.Join(e.Allowed, ", "))
}

// CardinalityViolationError is returned when a mutating operation would
// break a relationship's cardinality constraint. The transaction is rolled
// back; no partial change is applied.
type CardinalityViolationError struct {
	Kind         string
	Relationship string
	Cardinality  Cardinality
	Actual       int
}

// Error returns the error message for CardinalityViolationError.
func (e *CardinalityViolationError) Error() string {
	return fmt.Sprintf("cardinality %s on %s.%s violated: %d existing edge(s)",
		e.Cardinality, e.Kind, e.Relationship, e.Actual)
}

// UnmappedKindError is returned when hydration encounters a label set with
// no registered descriptor. Surfacing this early exposes schema drift.
type UnmappedKindError struct {
	Labels []string
}

// Error returns the error message for UnmappedKindError.
func (e *UnmappedKindError) Error() string {
	return fmt.Sprintf("no kind registered for labels [%s]", strings.Join(e.Labels, ", "))
}

// TransientError marks a transport failure worth retrying: connection reset,
// leader unavailable, or a per-call deadline. The coordinator retries these
// with bounded exponential backoff.
type TransientError struct {
	Op    string
	Cause error
}

// Error returns the error message for TransientError.
func (e *TransientError) Error() string {
	return fmt.Sprintf("transient transport failure during %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause of the TransientError.
func (e *TransientError) Unwrap() error {
	return e.Cause
}

// TransportError is a non-retryable transport failure, or a transient one
// whose retry budget is exhausted.
type TransportError struct {
	Op       string
	Attempts int
	Cause    error
}

// Error returns the error message for TransportError.
func (e *TransportError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("transport failure during %s after %d attempts: %v", e.Op, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause of the TransportError.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when a query expected to return an instance
// finds no matching results.
type NotFoundError struct {
	Kind string
}

// Error returns the error message for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: not found", e.Kind)
}

// NotUniqueError is returned when a query expected to return a single
// instance finds multiple matches.
type NotUniqueError struct {
	Kind  string
	Count int
}

// Error returns the error message for NotUniqueError.
func (e *NotUniqueError) Error() string {
	return fmt.Sprintf("%s: expected unique, got %d", e.Kind, e.Count)
}

// IsTransient reports whether err (or anything it wraps) is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
