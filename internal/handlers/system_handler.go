package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clarity-health/claimrisk/internal/cache"
	"github.com/clarity-health/claimrisk/internal/push"
)

// SystemHandler reports operational state of the ingestion pipeline: cache
// hit/miss stats and the push channel's live subscriber count. It replaces
// the finance domain's per-user health profile with a system health view.
type SystemHandler struct {
	cache *cache.Cache
	hub   *push.Hub
}

// NewSystemHandler builds a SystemHandler.
func NewSystemHandler(c *cache.Cache, hub *push.Hub) *SystemHandler {
	return &SystemHandler{cache: c, hub: hub}
}

// Detail handles GET /health/detailed.
func (h *SystemHandler) Detail(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                "ok",
		"cache":                 h.cache.Snapshot(),
		"push_subscriber_count": h.hub.SubscriberCount(),
	})
}

// Subscribe handles GET /ws/notifications, upgrading to a websocket
// connection that streams file_progress/risk_score_calculated/
// episode_linked events.
func (h *SystemHandler) Subscribe(c *gin.Context) {
	h.hub.Subscribe(c)
}

// CacheStats handles GET /cache/stats — the cache admin read side.
func (h *SystemHandler) CacheStats(c *gin.Context) {
	snap := h.cache.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"hits":    snap.Hits,
		"misses":  snap.Misses,
		"entries": h.cache.Len(),
	})
}

// ResetCacheStats handles POST /cache/stats/reset — zeroes the hit/miss
// counters without evicting cached entries.
func (h *SystemHandler) ResetCacheStats(c *gin.Context) {
	h.cache.ResetStats()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
