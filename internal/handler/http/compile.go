package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gunagantinikhil/code-cast1/internal/domain"
	"github.com/gunagantinikhil/code-cast1/internal/service"
)

const languageKey = "language"

// CompileHandler proxies code execution requests to the remote runner.
type CompileHandler struct {
	execService *service.ExecutionService
}

// NewCompileHandler creates a CompileHandler.
func NewCompileHandler(execService *service.ExecutionService) *CompileHandler {
	if execService == nil {
		panic("ExecutionService cannot be nil for CompileHandler")
	}
	return &CompileHandler{execService: execService}
}

// Compile handles POST /compile {code, language}. On success the runner's reply is relayed
// unchanged.
func (h *CompileHandler) Compile(c *gin.Context) {
	var req domain.ExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Compile: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Missing 'code' or 'language' in request body.")
		return
	}
	c.Set(languageKey, req.Language)

	result, err := h.execService.Execute(c.Request.Context(), req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	if len(result.Raw) > 0 {
		c.Data(http.StatusOK, "application/json; charset=utf-8", result.Raw)
		return
	}
	SuccessResponse(c, http.StatusOK, result)
}
