package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BasicHandler serves the root and health endpoints.
type BasicHandler struct{}

// NewBasicHandler creates the basic handler.
func NewBasicHandler() *BasicHandler {
	return &BasicHandler{}
}

// Root handles GET /.
func (h *BasicHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Blockchain Bank API!",
	})
}

// Health handles GET /healthz.
func (h *BasicHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
