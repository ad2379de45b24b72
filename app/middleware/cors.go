package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/address-validator/app/responses"
)

const (
	corsAllowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
)

// CORS allow-list policy. Requests without an Origin header pass through;
// listed origins get Access-Control-Allow-Origin; any other origin is
// rejected with 403 CORS_FORBIDDEN. Allowed preflights end with 204.
func CORS(allowlist []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, origin := range allowlist {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if _, ok := allowed[origin]; !ok {
			responses.AbortWithError(c, http.StatusForbidden, responses.CodeCORSForbidden,
				"Origin is not allowed by CORS policy", gin.H{"origin": origin})
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Vary", "Origin")
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			headers := c.GetHeader("Access-Control-Request-Headers")
			if strings.TrimSpace(headers) == "" {
				headers = corsAllowHeaders
			}
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
