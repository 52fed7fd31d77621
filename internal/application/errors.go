package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist or is inactive where an active record is required.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when authentication material cannot be verified.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned when a disabled account attempts to authenticate.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError reports that a write collides with existing scheduling state:
// an overlapping time slot, a duplicate schedule tuple, or an occupied weekly
// slot.
type ConflictError struct {
	Message string
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	if c == nil || c.Message == "" {
		return "conflict"
	}
	return c.Message
}

// PreconditionError reports that a delete or deactivate was blocked by live
// dependents, such as schedules still referencing a time slot or non-terminal
// enrollments against a schedule.
type PreconditionError struct {
	Message string
}

// Error implements the error interface.
func (p *PreconditionError) Error() string {
	if p == nil || p.Message == "" {
		return "precondition failed"
	}
	return p.Message
}
