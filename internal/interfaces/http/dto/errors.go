package dto

import "net/http"

// Boundary error codes for failures that never reach the domain layer
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeUnauthorized is used when the caller's identity is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeForbidden is used when the caller lacks the role for an operation
	ErrCodeForbidden = "FORBIDDEN"
)

// ErrorCodeHTTPStatus maps domain and boundary error codes to HTTP status
// codes. The domain raises codes like PERIOD_CLOSED without knowing anything
// about HTTP; this table is the only place the mapping lives.
var ErrorCodeHTTPStatus = map[string]int{
	// Boundary errors
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,

	// Malformed or semantically invalid input -> 400 Bad Request
	"INVALID_INPUT":  http.StatusBadRequest,
	"INVALID_TIER":   http.StatusBadRequest,
	"INVALID_PARENT": http.StatusBadRequest,
	"INVALID_TYPE":   http.StatusBadRequest,
	"INVALID_DATE":   http.StatusBadRequest,
	"INVALID_ACTOR":  http.StatusBadRequest,
	"INVALID_LINE":   http.StatusBadRequest,
	"INVALID_PERIOD": http.StatusBadRequest,

	// Missing resources -> 404 Not Found
	ErrCodeNotFound:     http.StatusNotFound,
	"ACCOUNT_NOT_FOUND": http.StatusNotFound,
	"PARENT_NOT_FOUND":  http.StatusNotFound,

	// Writing into a locked period is a permission problem, not a state
	// problem: the entry may be perfectly valid once the period reopens
	"PERIOD_CLOSED":   http.StatusForbidden,
	"UNPOST_DISABLED": http.StatusForbidden,
	ErrCodeForbidden:  http.StatusForbidden,

	// Conflicting writes -> 409 Conflict
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"DUPLICATE_CODE":          http.StatusConflict,
	"ALREADY_EXISTS":          http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"UNBALANCED_ENTRY":          http.StatusUnprocessableEntity,
	"INVALID_PARENT_TIER":       http.StatusUnprocessableEntity,
	"INACTIVE_ACCOUNT":          http.StatusUnprocessableEntity,
	"INVALID_STATE_TRANSITION":  http.StatusUnprocessableEntity,
	"NOT_POSTED":                http.StatusUnprocessableEntity,
	"ALREADY_REVERSED":          http.StatusUnprocessableEntity,
	"PRIOR_PERIOD_OPEN":         http.StatusUnprocessableEntity,
	"OUTSTANDING_DRAFT_ENTRIES": http.StatusUnprocessableEntity,
	"ALREADY_CLOSED":            http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
