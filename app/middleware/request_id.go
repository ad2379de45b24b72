package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/address-validator/app/responses"
	"github.com/address-validator/helpers/utils"
)

// RequestIDHeader header carrying the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID keeps an inbound X-Request-ID or generates a UUID, stores it in
// the gin context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = utils.GenerateUUID()
		}

		c.Set(responses.RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID request id of c, "" outside the middleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(responses.RequestIDContextKey)
}
