package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable machine codes carried by every error body.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotAuthorized   = "NOT_AUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Code: code, Details: details})
}

// validationError covers malformed input and constraint violations (400).
func validationError(c *gin.Context, message string, details interface{}) {
	respondError(c, http.StatusBadRequest, CodeValidationError, message, details)
}

// authorizationError covers callers without rights over the target (403).
func authorizationError(c *gin.Context, message string) {
	respondError(c, http.StatusForbidden, CodeNotAuthorized, message, nil)
}

// conflictError covers requests that lose to existing state, like a taken
// time slot (400).
func conflictError(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, CodeConflict, message, nil)
}

// notFoundError covers absent referenced entities (404).
func notFoundError(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, CodeNotFound, resource+" not found", nil)
}

// internalError hides unexpected failures behind a generic message (500).
func internalError(c *gin.Context) {
	respondError(c, http.StatusInternalServerError, CodeInternalError, "An unexpected error occurred", nil)
}
