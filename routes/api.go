package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/address-validator/app/controllers"
)

// SetupAPIRoutes validation endpoints and the admin group, all behind auth
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController, auth gin.HandlerFunc) {
	validate := router.Group("/validate-address", auth)
	{
		validate.POST("", addressController.ValidateAddress)
		validate.POST("/batch", addressController.BatchValidate)
	}

	v1 := router.Group("/v1")
	{
		admin := v1.Group("/admin", auth)
		{
			admin.GET("/stats", adminController.GetStats)
			admin.GET("/cache/stats", adminController.GetCacheStats)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}
