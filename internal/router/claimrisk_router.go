package router

import (
	"github.com/gin-gonic/gin"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/handlers"
	"github.com/clarity-health/claimrisk/internal/middleware"
	"github.com/clarity-health/claimrisk/internal/services"
)

// ClaimRiskRouter registers the ingestion, query, scoring, pattern, and
// audit routes that make up the claim-risk API surface.
type ClaimRiskRouter struct {
	claimRiskHandler *handlers.ClaimRiskHandler
	systemHandler    *handlers.SystemHandler
	jwtService       services.JWTService
	roleLookup       middleware.RoleLookup
}

// NewClaimRiskRouter builds a ClaimRiskRouter.
func NewClaimRiskRouter(
	claimRiskHandler *handlers.ClaimRiskHandler,
	systemHandler *handlers.SystemHandler,
	jwtService services.JWTService,
	roleLookup middleware.RoleLookup,
) *ClaimRiskRouter {
	return &ClaimRiskRouter{
		claimRiskHandler: claimRiskHandler,
		systemHandler:    systemHandler,
		jwtService:       jwtService,
		roleLookup:       roleLookup,
	}
}

// RegisterRoutes registers all claim-risk routes. Every route requires a
// valid access token; mutation/admin routes additionally require a role.
func (cr *ClaimRiskRouter) RegisterRoutes(rg *gin.RouterGroup) {
	authed := rg.Group("")
	authed.Use(middleware.JWTAuth(cr.jwtService))
	{
		authed.GET("/health/detailed", cr.systemHandler.Detail)
		authed.GET("/ws/notifications", cr.systemHandler.Subscribe)

		claims := authed.Group("/claims")
		{
			claims.GET("", cr.claimRiskHandler.ListClaims)
			claims.GET("/:id", cr.claimRiskHandler.GetClaim)
			claims.GET("/:id/episode", cr.claimRiskHandler.GetEpisode)
			claims.GET("/:id/risk-score", cr.claimRiskHandler.GetRiskScore)

			restricted := claims.Group("")
			restricted.Use(middleware.RequireRole(cr.roleLookup, domain.RoleAdmin, domain.RoleUser))
			{
				restricted.POST("/ingest", cr.claimRiskHandler.IngestClaimsFile)
				restricted.POST("/:id/risk-score", cr.claimRiskHandler.ScoreClaim)
			}
		}

		remittances := authed.Group("/remittances")
		remittances.Use(middleware.RequireRole(cr.roleLookup, domain.RoleAdmin, domain.RoleUser))
		{
			remittances.POST("/ingest", cr.claimRiskHandler.IngestRemittanceFile)
		}

		authed.GET("/episodes", cr.claimRiskHandler.ListEpisodesByStatus)
		authed.GET("/risk-scores", cr.claimRiskHandler.ListRiskScoresByLevel)
		authed.GET("/patterns", cr.claimRiskHandler.ListPatterns)
		authed.GET("/remits/:id", cr.claimRiskHandler.GetRemittance)
		authed.GET("/remits", cr.claimRiskHandler.ListRemittances)
		authed.GET("/jobs/:id", cr.claimRiskHandler.GetJob)

		episodes := authed.Group("/episodes")
		episodes.Use(middleware.RequireRole(cr.roleLookup, domain.RoleAdmin, domain.RoleUser))
		{
			episodes.POST("/:id/link", cr.claimRiskHandler.LinkEpisode)
			episodes.POST("/:id/status", cr.claimRiskHandler.TransitionEpisodeStatus)
		}

		auditGroup := authed.Group("")
		auditGroup.Use(middleware.RequireRole(cr.roleLookup, domain.RoleAdmin, domain.RoleAudit))
		{
			auditGroup.GET("/audit-logs", cr.claimRiskHandler.ListAuditLogs)
			auditGroup.GET("/audit-logs/stats", cr.claimRiskHandler.AuditLogStats)
			auditGroup.POST("/patterns/sweep", cr.claimRiskHandler.RunPatternSweep)
		}

		cacheGroup := authed.Group("/cache")
		cacheGroup.Use(middleware.RequireRole(cr.roleLookup, domain.RoleAdmin))
		{
			cacheGroup.GET("/stats", cr.systemHandler.CacheStats)
			cacheGroup.POST("/stats/reset", cr.systemHandler.ResetCacheStats)
		}
	}
}
