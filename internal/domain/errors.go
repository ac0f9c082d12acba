package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the
// handler layer without a giant switch over concrete types.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrInactive        = errors.New("inactive")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrNothingToUpdate = errors.New("nothing to update")

	// Field type rule violations
	ErrInvalidFieldConfig     = errors.New("invalid field config")
	ErrDropdownOptionsMissing = errors.New("dropdown options missing")
	ErrInvalidFieldDefault    = errors.New("invalid field default value")
	ErrInvalidFieldValue      = errors.New("invalid field value")

	// Closed-variant violations
	ErrUnexpectedRole      = errors.New("unexpected role")
	ErrUnexpectedFieldType = errors.New("unexpected field type")
)

// NotFoundError indicates a resource is absent.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.Kind, e.ID)
}
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InactiveError indicates a resource exists but is soft-deleted.
// An inactive ancestor is decision-terminal: no capability check
// proceeds past it.
type InactiveError struct {
	Kind string
	ID   string
}

func (e *InactiveError) Error() string {
	return fmt.Sprintf("%s %s: inactive", e.Kind, e.ID)
}
func (e *InactiveError) StatusCode() int      { return http.StatusNotFound }
func (e *InactiveError) Is(target error) bool { return target == ErrInactive }

// ForbiddenError indicates the actor lacks the required permission level.
// The actor id is attached for logging; handlers must not reveal whether
// the resource exists versus the actor lacking access.
type ForbiddenError struct {
	ActorID string
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("actor %s: %s", e.ActorID, e.Message)
	}
	return fmt.Sprintf("actor %s: forbidden", e.ActorID)
}
func (e *ForbiddenError) StatusCode() int      { return http.StatusForbidden }
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// InvalidOrderError indicates a requested position outside [1, max].
type InvalidOrderError struct {
	Requested int
	Max       int
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("order %d outside valid range [1, %d]", e.Requested, e.Max)
}
func (e *InvalidOrderError) StatusCode() int      { return http.StatusBadRequest }
func (e *InvalidOrderError) Is(target error) bool { return target == ErrInvalidOrder }

// ConflictError represents a uniqueness violation with details about the
// existing resource.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
