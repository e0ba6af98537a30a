package router

import (
	"github.com/gin-gonic/gin"

	"github.com/clarity-health/claimrisk/internal/handlers"
	"github.com/clarity-health/claimrisk/internal/middleware"
	"github.com/clarity-health/claimrisk/internal/services"
)

// Router handles all application routes
type Router struct {
	authRouter      *AuthRouter
	claimRiskRouter *ClaimRiskRouter
	audit           gin.HandlerFunc
	corsOrigins     []string
}

// NewRouter creates a new main router with all domain routers. audit, when
// non-nil, is registered ahead of the API group so every authenticated
// claim-risk request is recorded (C16). corsOrigins is forwarded to
// middleware.CORS verbatim; config.LoadConfig is responsible for refusing
// to start with a permissive policy in production.
func NewRouter(authHandler *handlers.AuthHandler, claimRiskRouter *ClaimRiskRouter, jwtService services.JWTService, audit gin.HandlerFunc, corsOrigins []string) *Router {
	return &Router{
		authRouter:      NewAuthRouter(authHandler, jwtService),
		claimRiskRouter: claimRiskRouter,
		audit:           audit,
		corsOrigins:     corsOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() *gin.Engine {
	// Create Gin router with default middleware
	router := gin.Default()

	// Add global middleware
	router.Use(middleware.CORS(r.corsOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API version group
	apiV1 := router.Group("/api/v1")
	if r.audit != nil {
		apiV1.Use(r.audit)
	}
	{
		// Register domain routers
		r.authRouter.RegisterRoutes(apiV1)
		r.claimRiskRouter.RegisterRoutes(apiV1)
	}

	return router
}
