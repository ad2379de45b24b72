// Package routes wires controllers and middleware onto the gin engine.
//
//   - api.go: validation endpoints and /v1/admin
//   - web.go: service info, /openapi.json, /docs
//   - routes.go: middleware chain, health, metrics, 404
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/address-validator/app/controllers"
	"github.com/address-validator/app/middleware"
	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/app/services"
)

// Options transport settings shared by every route
type Options struct {
	Logger        *zap.Logger
	Metrics       *services.Metrics   // nil disables request metrics
	Gatherer      prometheus.Gatherer // source for /metrics, nil hides the endpoint
	CORSAllowlist []string
	AuthEnabled   bool
}

// SetupAllRoutes installs middleware and every route group
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController, opts Options) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	requests.RegisterValidators()
	setupMiddleware(router, opts)

	auth := middleware.Auth(opts.AuthEnabled)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController, auth)
	SetupMetricsRoutes(router, opts.Gatherer)

	router.NoRoute(func(c *gin.Context) {
		responses.AbortWithError(c, http.StatusNotFound, responses.CodeNotFound, "Route not found",
			gin.H{"method": c.Request.Method, "path": c.Request.URL.Path})
	})
}

// SetupHealthRoutes /health plus readiness and liveness aliases
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupMetricsRoutes Prometheus exposition
func SetupMetricsRoutes(router *gin.Engine, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		return
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// setupMiddleware order matters: the request id must exist before the
// logger and the error envelopes read it.
func setupMiddleware(router *gin.Engine, opts Options) {
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(opts.Logger, opts.Metrics))
	router.Use(middleware.Recovery(opts.Logger))
	router.Use(middleware.CORS(opts.CORSAllowlist))
}
