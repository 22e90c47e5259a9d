package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/execution"
	"github.com/gunagantinikhil/code-cast1/internal/service"
)

// HandleServiceError maps service errors onto the response shapes clients already rely on.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidExecution):
		ErrorResponse(c, http.StatusBadRequest, "Missing 'code' or 'language' in request body.")
	case errors.Is(err, service.ErrUnsupportedLanguage):
		ErrorResponse(c, http.StatusBadRequest, "Unsupported language: "+c.GetString(languageKey))
	case errors.Is(err, service.ErrExecutorNotConfigured):
		ErrorResponse(c, http.StatusInternalServerError, "Compiler is not configured. Missing JDoodle credentials.")
	case errors.Is(err, service.ErrExecutionFailed):
		var apiErr *execution.APIError
		var details interface{} = err.Error()
		if errors.As(err, &apiErr) {
			details = apiErr.Body
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compile code", "details": details})
	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
