package http

import (
	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups and shared middleware.
//
//	V1        /api/v1, API rate limit
//	Protected /api/v1, bearer token required
//	Admin     /api/v1/admin, token with the admin role
type RouterContext struct {
	Engine    *gin.Engine
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup
	Config    config.JWTConfig

	AuthMiddleware gin.HandlerFunc
	// TriggerRateLimiter throttles routes that start batch work.
	TriggerRateLimiter *httpkit.IPRateLimiter
}
