package utils

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int               `json:"-"`              // HTTP status code, not included in JSON response body for error itself
	Code       string            `json:"code,omitempty"` // Application-specific error code
	Message    string            `json:"message"`
	Details    string            `json:"details,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"` // Per-field validation messages
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// WithFields attaches per-field validation messages.
func (e *APIError) WithFields(fields map[string]string) *APIError {
	e.Fields = fields
	return e
}

var exposeErrorDetails = true

// SetErrorDetailsExposed controls whether internal error details reach API clients.
// Production deployments turn it off.
func SetErrorDetailsExposed(expose bool) {
	exposeErrorDetails = expose
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	body := *err
	if !exposeErrorDetails && body.StatusCode >= http.StatusInternalServerError {
		body.Details = ""
	}
	c.JSON(body.StatusCode, gin.H{"error": body})
	c.Abort() // Abort further processing if it's a middleware or critical error
}

// RespondWithSuccess wraps data in the {"status":"success"} envelope used by the POS clients.
func RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(statusCode, body)
}

// Common Error Constants
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)

// Validation functions

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidEmail checks if a string is a valid email format.
var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(email))
}

// IsValidPasswordLength checks if password meets minimum length requirement.
func IsValidPasswordLength(password string, minLength int) bool {
	return len(password) >= minLength
}

// RespondValidationFailed sends a 422 carrying the offending fields.
func RespondValidationFailed(c *gin.Context, fields map[string]string) {
	RespondWithError(c, NewAPIError(http.StatusUnprocessableEntity, ErrCodeValidationFailed, "Input validation failed", "").WithFields(fields))
}
