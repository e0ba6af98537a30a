package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	
	"github.com/clarity-health/claimrisk/internal/services"
)

// CORS returns a CORS middleware restricted to the given allowed origins.
// An empty list falls back to allowing all origins, which is only
// appropriate outside production (spec.md §6 forbids wildcards/localhost/
// non-HTTPS origins in production; config.LoadConfig enforces that before
// this is ever called with an empty list there).
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}
	config.AllowHeaders = []string{"Authorization", "Content-Type"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	return cors.New(config)
}

// Logger returns Gin's default logger middleware
func Logger() gin.HandlerFunc {
	return gin.Logger()
}

// Recovery returns Gin's default recovery middleware
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}

// JWTAuth returns a JWT authentication middleware instance
// This is a helper function that requires proper service injection
func JWTAuth(jwtService services.JWTService) gin.HandlerFunc {
	middleware := NewJWTAuthMiddleware(jwtService)
	return middleware.RequireAuth()
}