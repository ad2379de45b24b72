package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/app/services"
)

// AdminController operational endpoints under /v1/admin
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController creates AdminController
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// GetStats GET /v1/admin/stats
func (ac *AdminController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, ac.adminService.GetSystemStats(c.Request.Context()))
}

// GetCacheStats GET /v1/admin/cache/stats
func (ac *AdminController) GetCacheStats(c *gin.Context) {
	stats, err := ac.adminService.GetCacheStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Could not read cache stats", zap.Error(err))
		responses.AbortWithError(c, http.StatusInternalServerError, responses.CodeInternalServerError,
			"Cache stats unavailable", nil)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// InvalidateCache POST /v1/admin/cache/invalidate. An empty body or address
// clears the whole cache.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			issues, _ := requests.Issues(err)
			responses.AbortWithError(c, http.StatusBadRequest, responses.CodeInvalidRequest,
				"Request validation failed", issues)
			return
		}
	}

	result, err := ac.adminService.InvalidateCache(c.Request.Context(), req.Address)
	if err != nil {
		ac.logger.Error("Cache invalidation failed", zap.Error(err))
		responses.AbortWithError(c, http.StatusInternalServerError, responses.CodeInternalServerError,
			"Cache invalidation failed", nil)
		return
	}

	c.JSON(http.StatusOK, responses.InvalidateCacheResponse{
		Success:          true,
		Scope:            result.Scope,
		ProcessingTimeMs: result.ProcessingTimeMs,
	})
}
