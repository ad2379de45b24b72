package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/address-validator/app/docs"
	"github.com/address-validator/app/responses"
)

const serviceVersion = "1.0.0"

// SetupWebRoutes service info and API documentation
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, responses.ServiceInfoResponse{
			Service: "Address Validation API",
			Version: serviceVersion,
			Docs:    "/docs",
		})
	})

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := docs.OpenAPIJSON()
		if err != nil {
			responses.AbortWithError(c, http.StatusInternalServerError, responses.CodeInternalServerError,
				"Unexpected server error", nil)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	})

	router.GET("/docs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"api":     "Address Validation API v" + serviceVersion,
			"openapi": "/openapi.json",
			"endpoints": map[string]string{
				"validate":     "POST /validate-address",
				"batch":        "POST /validate-address/batch",
				"health":       "GET /health",
				"metrics":      "GET /metrics",
				"cache_stats":  "GET /v1/admin/cache/stats",
				"cache_delete": "POST /v1/admin/cache/invalidate",
				"stats":        "GET /v1/admin/stats",
			},
		})
	})
}
