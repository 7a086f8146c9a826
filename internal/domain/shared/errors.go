package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists   = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput    = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState    = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrUnauthenticated = NewDomainError("UNAUTHENTICATED", "Authentication required")
	ErrForbidden       = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
)

// Scope resolution errors. Deterministic functions of the request and current
// tenancy state; never retried.
var (
	ErrScopeMissing   = NewDomainError("SCOPE_MISSING", "Branch selector is required for this operation")
	ErrScopeNotFound  = NewDomainError("SCOPE_NOT_FOUND", "Branch not found")
	ErrScopeInactive  = NewDomainError("SCOPE_INACTIVE", "Branch is not active")
	ErrScopeForbidden = NewDomainError("SCOPE_FORBIDDEN", "No access to this branch")
)

// Ledger errors
var (
	ErrCrossScope           = NewDomainError("CROSS_SCOPE", "Item does not belong to the bill's branch")
	ErrDuplicateLine        = NewDomainError("DUPLICATE_LINE", "Item is already on this bill")
	ErrRecalculationFailure = NewDomainError("RECALCULATION_FAILED", "Failed to recalculate bill totals")
)

// NewForbiddenError builds a FORBIDDEN error that names the refused
// resource/action pair so callers can produce a precise message.
func NewForbiddenError(resource, action string) *DomainError {
	return NewDomainError("FORBIDDEN", fmt.Sprintf("Missing privilege %s:%s", resource, action))
}

// IsDomainError reports whether err is a *DomainError with the given code.
func IsDomainError(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
