package handlers

import (
	"github.com/gin-gonic/gin"

	"chainbank-backend/internal/apperrors"
)

// respondError renders a service error using its classified kind for the
// status code.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	c.JSON(kind.HTTPStatus(), gin.H{
		"success": false,
		"error":   apperrors.Message(err),
		"message": apperrors.Message(err),
		"code":    kind.String(),
	})
}
