package utils

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
)

// Error codes carried in APIError.Code.
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
)

// APIError is the body of every failed response, wrapped as {"error": ...}.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message, Details: details}
}

// RespondWithError writes err and aborts the handler chain.
func RespondWithError(c *gin.Context, err *APIError) {
	if err.RequestID == "" {
		err.RequestID = RequestID(c)
	}
	c.AbortWithStatusJSON(err.StatusCode, gin.H{"error": err})
}

func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}

// RespondInternalError hides the cause from the client; callers log it first.
func RespondInternalError(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrCodeInternalServerError, message, ""))
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidEmail accepts a bare address; display-name forms are rejected.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}

// IsValidPasswordLength counts runes, not bytes.
func IsValidPasswordLength(password string, minLength int) bool {
	return len([]rune(password)) >= minLength
}
