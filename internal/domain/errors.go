package domain

import "fmt"

// ValidationError indicates bad input. No state was changed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// InvalidStateError indicates an operation that is not legal from the entity's
// current status. Expected under concurrent transitions: the loser of a race
// receives this error and should treat it as "someone else already acted".
type InvalidStateError struct {
	Current string
	Target  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("illegal transition from %q to %q", e.Current, e.Target)
}

// NewInvalidStateError creates an InvalidStateError for a rejected transition.
func NewInvalidStateError(current, target string) *InvalidStateError {
	return &InvalidStateError{Current: current, Target: target}
}

// AuthorizationError indicates the acting user lacks permission for the operation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NewAuthorizationError creates an AuthorizationError with the given message.
func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// PreconditionError indicates an unmet business precondition, such as an
// advance payment that has not completed yet.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// NewPreconditionError creates a PreconditionError with the given message.
func NewPreconditionError(message string) *PreconditionError {
	return &PreconditionError{Message: message}
}

// NoCapacityError indicates no free bed could be found. Recoverable: the caller
// may retry allocation once capacity frees up.
type NoCapacityError struct {
	HostelID string
}

func (e *NoCapacityError) Error() string {
	return fmt.Sprintf("no free bed available in hostel %s", e.HostelID)
}

// NewNoCapacityError creates a NoCapacityError for the given hostel.
func NewNoCapacityError(hostelID string) *NoCapacityError {
	return &NoCapacityError{HostelID: hostelID}
}

// NotFoundError indicates the requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError indicates a write that collided with existing data, such as a
// unique-key violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}
