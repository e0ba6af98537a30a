package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/models"
	"github.com/clarity-health/claimrisk/internal/services"
	"gorm.io/gorm"
)

// auditLogRepository implements services.AuditLogRepository using GORM.
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance.
func NewAuditLogRepository(db *gorm.DB) services.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create appends one audit entry. Audit logs are never updated or
// deleted through the application (spec.md §6.3).
func (r *auditLogRepository) Create(ctx context.Context, entry domain.AuditLog) error {
	model := models.NewAuditLogModelFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

// List returns audit entries newest-first with offset pagination.
func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error) {
	var rows []models.AuditLogModel
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	out := make([]domain.AuditLog, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

// Stats aggregates request count, status-code breakdown, and average
// duration for entries recorded since `since`.
func (r *auditLogRepository) Stats(ctx context.Context, since time.Time) (domain.AuditLogStats, error) {
	var rows []struct {
		StatusCode int
		Count      int64
		AvgMS      float64
	}
	err := r.db.WithContext(ctx).Model(&models.AuditLogModel{}).
		Select("status_code, count(*) as count, avg(duration_ms) as avg_ms").
		Where("timestamp >= ?", since).
		Group("status_code").
		Scan(&rows).Error
	if err != nil {
		return domain.AuditLogStats{}, fmt.Errorf("failed to aggregate audit log stats: %w", err)
	}

	stats := domain.AuditLogStats{Since: since, ByStatusCode: make(map[int]int64, len(rows))}
	var weightedDuration float64
	for _, row := range rows {
		stats.TotalRequests += row.Count
		stats.ByStatusCode[row.StatusCode] = row.Count
		weightedDuration += row.AvgMS * float64(row.Count)
	}
	if stats.TotalRequests > 0 {
		stats.AverageDuration = weightedDuration / float64(stats.TotalRequests)
	}
	return stats, nil
}
