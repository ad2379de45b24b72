package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-validator/app/responses"
)

// Recovery turns panics into the 500 error envelope
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
			zap.Stack("stack"))

		responses.AbortWithError(c, http.StatusInternalServerError, responses.CodeInternalServerError,
			"Unexpected server error", nil)
	})
}
