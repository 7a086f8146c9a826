package dto

import (
	"net/http"
	"strings"
)

// Common error codes used directly by the HTTP layer
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeUnauthorized = "UNAUTHENTICATED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes. Codes not
// listed here fall back to suffix conventions in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	"WEAK_PASSWORD":    http.StatusBadRequest,
	"INVALID_EXPIRY":   http.StatusBadRequest,
	"SCOPE_MISSING":    http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,

	ErrCodeForbidden:      http.StatusForbidden,
	"SCOPE_FORBIDDEN":     http.StatusForbidden,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,

	ErrCodeNotFound:   http.StatusNotFound,
	"SCOPE_NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS": http.StatusConflict,
	"DUPLICATE_LINE": http.StatusConflict,

	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"CROSS_SCOPE":          http.StatusUnprocessableEntity,
	"SCOPE_INACTIVE":       http.StatusUnprocessableEntity,
	"TAX_RATE_IN_USE":      http.StatusUnprocessableEntity,
	"TAX_RATE_INACTIVE":    http.StatusUnprocessableEntity,
	"PRIVILEGE_INACTIVE":   http.StatusUnprocessableEntity,
	"USER_HAS_BILLS":       http.StatusUnprocessableEntity,
	"RECALCULATION_FAILED": http.StatusUnprocessableEntity,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code. Codes
// without an explicit mapping follow naming conventions: *_NOT_FOUND is 404,
// *_TAKEN and *_EXISTS are 409, INVALID_* is 400. Everything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_TAKEN"), strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
