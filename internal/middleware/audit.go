package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/logging"
	"github.com/clarity-health/claimrisk/internal/phihash"
	"github.com/clarity-health/claimrisk/internal/services"
)

// Audit records one AuditLog entry per request — method, path, status
// code, duration, and a hashed principal id — after the handler chain
// completes (spec.md §3 audit trail, §6.3 endpoint contract, C16). It
// never blocks the response: the write happens after c.Next() returns,
// off the critical path the client is waiting on.
func Audit(auditLogs services.AuditLogRepository, hasher *phihash.Hasher) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set("X-Request-ID", requestID)
		}

		c.Next()

		principal := GetUserID(c)
		if principal != "" {
			principal = hasher.Hash(principal)
		}

		entry := domain.AuditLog{
			RequestID:   requestID,
			Method:      c.Request.Method,
			Path:        c.FullPath(),
			StatusCode:  c.Writer.Status(),
			PrincipalID: principal,
			DurationMS:  time.Since(start).Milliseconds(),
			Timestamp:   start,
		}
		if len(c.Errors) > 0 {
			entry.Detail = c.Errors.String()
		}

		if err := auditLogs.Create(c.Request.Context(), entry); err != nil {
			if logger := logging.GetLogger(); logger != nil {
				logger.Warn("failed to record audit log entry", logging.WithError(err))
			}
		}
	}
}
