package httpx

import (
	"net/http"
	"strings"
)

// APIError is the error envelope every handler writes. Error codes are
// stable machine-readable strings; descriptions are safe for clients
// (authentication failures stay deliberately generic).
type APIError struct {
	Status      int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e APIError) Error() string { return e.Code }

// WriteError renders the error as a JSON response.
func (e APIError) WriteError(w http.ResponseWriter) {
	WriteJSON(w, e.Status, e)
}

// Predefined envelopes. Unauthorized is uniform on purpose: it never
// distinguishes unknown accounts from wrong passwords or bad reset codes.
var (
	ErrUnauthorized = APIError{
		Status:      http.StatusUnauthorized,
		Code:        "unauthorized",
		Description: "Invalid credentials.",
	}
	ErrInvalidToken = APIError{
		Status:      http.StatusUnauthorized,
		Code:        "invalid_token",
		Description: "The token is missing, invalid, or expired.",
	}
	ErrInvalidBody = APIError{
		Status:      http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "Malformed request body.",
	}
	ErrServerError = APIError{
		Status:      http.StatusInternalServerError,
		Code:        "server_error",
		Description: "An unexpected error occurred.",
	}
)

// BadRequest builds a 400 with a specific validation description.
// Validation failures do not leak account existence, so being specific
// here is safe.
func BadRequest(desc string) APIError {
	return APIError{Status: http.StatusBadRequest, Code: "invalid_request", Description: desc}
}

// NotFound builds a 404. Used only where enumeration is not a concern
// (domain resolution, post-authentication internal lookups).
func NotFound(desc string) APIError {
	return APIError{Status: http.StatusNotFound, Code: "not_found", Description: desc}
}

// Forbidden builds a 403 naming the roles that would be accepted. A valid
// principal with an insufficient role is distinct from an unauthenticated
// caller, and the required role is safe to describe.
func Forbidden(requiredRoles ...string) APIError {
	return APIError{
		Status:      http.StatusForbidden,
		Code:        "forbidden",
		Description: "Requires role: " + strings.Join(requiredRoles, ", ") + ".",
	}
}
