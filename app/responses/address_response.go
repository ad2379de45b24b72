package responses

import (
	"github.com/gin-gonic/gin"

	"github.com/address-validator/app/models"
)

// RequestIDContextKey gin context key holding the request id
const RequestIDContextKey = "request_id"

// Error codes of the error envelope
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeCORSForbidden       = "CORS_FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeTooManyAddresses    = "TOO_MANY_ADDRESSES"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse error envelope shared by every endpoint
type ErrorResponse struct {
	Code      string  `json:"code"`       // machine-readable error code
	Message   string  `json:"message"`    // human-readable summary
	Details   any     `json:"details"`    // null, an object or a list of field issues
	RequestID *string `json:"request_id"` // null when the request carried none
}

// NewErrorResponse builds the envelope, taking the request id from c
func NewErrorResponse(c *gin.Context, code, message string, details any) ErrorResponse {
	var requestID *string
	if id := c.GetString(RequestIDContextKey); id != "" {
		requestID = &id
	}

	return ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
	}
}

// AbortWithError writes the envelope and stops the handler chain
func AbortWithError(c *gin.Context, status int, code, message string, details any) {
	c.AbortWithStatusJSON(status, NewErrorResponse(c, code, message, details))
}

// BatchValidateResponse body of POST /validate-address/batch
type BatchValidateResponse struct {
	BatchID string                     `json:"batch_id"`
	Total   int                        `json:"total"`
	Results []*models.ValidationResult `json:"results"`
}

// HealthResponse body of /health, /ready and /live
type HealthResponse struct {
	Status string `json:"status"`
}

// InvalidateCacheResponse body of POST /v1/admin/cache/invalidate
type InvalidateCacheResponse struct {
	Success          bool   `json:"success"`
	Scope            string `json:"scope"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// ServiceInfoResponse body of GET /
type ServiceInfoResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}
