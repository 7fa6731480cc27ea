// Package shared contains common domain errors used across all domain packages.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// ErrNotFound is returned when a trainee, session or curriculum item is missing.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation is returned for malformed input (titles, links, durations).
	ErrValidation = errors.New("validation error")

	// ErrPersistence is returned when the store is unavailable or rejects a write.
	ErrPersistence = errors.New("persistence error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "curriculum", "internship", "progress"
	Op      string // Operation that failed, e.g., "Start", "Reorder"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Curriculum domain errors
var (
	ErrPartNotFound    = NewDomainError("curriculum", "Find", ErrNotFound, "part not found")
	ErrSectionNotFound = NewDomainError("curriculum", "Find", ErrNotFound, "section not found")
	ErrStepNotFound    = NewDomainError("curriculum", "Find", ErrNotFound, "step not found")
	ErrInvalidStepKind = NewDomainError("curriculum", "Validate", ErrValidation, "invalid step kind")
	ErrInvalidScope    = NewDomainError("curriculum", "Reorder", ErrValidation, "invalid ordering scope")
)

// Internship domain errors
var (
	ErrTraineeNotFound      = NewDomainError("internship", "FindTrainee", ErrNotFound, "trainee not found")
	ErrSessionNotFound      = NewDomainError("internship", "FindSession", ErrNotFound, "session not found")
	ErrSessionAlreadyActive = NewDomainError("internship", "Start", ErrInvalidState, "trainee already has an active session")
	ErrNotTrainee           = NewDomainError("internship", "Start", ErrInvalidState, "user is not in trainee status")
)

// Progress domain errors
var (
	ErrToggleNotAllowed = NewDomainError("progress", "Toggle", ErrInvalidState, "only simple steps can be toggled")
	ErrMediaNotAllowed  = NewDomainError("progress", "SubmitMedia", ErrInvalidState, "only video and photo steps accept media")
	ErrEmptyMediaRef    = NewDomainError("progress", "SubmitMedia", ErrValidation, "media reference is required")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidState checks if the error is a state transition error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// Persistence wraps a store failure so callers can tell it apart from domain errors.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return WrapError("storage", op, ErrPersistence, "store operation failed", err)
}
