package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/address-validator/app/responses"
)

const bearerPrefix = "Bearer "

// Auth bearer-token gate. When disabled every request passes. When enabled
// the Authorization header must carry a non-empty Bearer token; the token
// itself is not verified yet.
func Auth(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) || strings.TrimSpace(header[len(bearerPrefix):]) == "" {
			responses.AbortWithError(c, http.StatusUnauthorized, responses.CodeUnauthorized,
				"Missing or invalid Bearer token",
				gin.H{"hint": "Set Authorization: Bearer <token>"})
			return
		}

		// TODO: verify the token as a JWT once an issuer is configured.
		c.Next()
	}
}
