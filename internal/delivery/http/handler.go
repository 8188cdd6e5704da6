package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/internal/tool"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	executor *tool.Executor
}

// NewHandler creates a new HTTP handler
func NewHandler(executor *tool.Executor) *Handler {
	return &Handler{executor: executor}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// ListTools returns the definitions of every invocable tool
func (h *Handler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tools": tool.Definitions(),
	})
}

// InvokeTool dispatches a tool invocation. A request that cannot be decoded
// is the only case answered with a non-200 status; everything past decoding
// is reported through the response envelope.
func (h *Handler) InvokeTool(c *gin.Context) {
	var req tool.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.Response{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	resp := h.executor.Execute(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}
