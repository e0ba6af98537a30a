package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/models"
	"github.com/clarity-health/claimrisk/internal/services"
	"gorm.io/gorm"
)

// riskScoreRepository implements services.RiskScoreRepository using GORM.
type riskScoreRepository struct {
	db *gorm.DB
}

// NewRiskScoreRepository creates a new risk score repository instance.
func NewRiskScoreRepository(db *gorm.DB) services.RiskScoreRepository {
	return &riskScoreRepository{db: db}
}

// Save inserts a new versioned risk score row; scores are append-only so
// the history of a claim's risk over time is preserved (spec.md §4.10).
func (r *riskScoreRepository) Save(ctx context.Context, score domain.RiskScore) (domain.RiskScore, error) {
	model, err := models.NewRiskScoreModelFromDomain(score)
	if err != nil {
		return domain.RiskScore{}, fmt.Errorf("failed to encode risk score: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.RiskScore{}, fmt.Errorf("failed to save risk score: %w", err)
	}
	return model.ToDomain()
}

// GetLatestByClaimID returns the most recently calculated score for a
// claim, tie-broken by ID per spec.md §3 canonical-record rule.
func (r *riskScoreRepository) GetLatestByClaimID(ctx context.Context, claimID string) (domain.RiskScore, error) {
	var model models.RiskScoreModel
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("calculated_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RiskScore{}, domain.ErrRiskScoreNotFound
		}
		return domain.RiskScore{}, fmt.Errorf("failed to get risk score: %w", err)
	}
	return model.ToDomain()
}

// ListByLevel returns the latest score per claim within a risk level,
// newest-first. Used by the dashboard's risk triage view.
func (r *riskScoreRepository) ListByLevel(ctx context.Context, level domain.RiskLevel, limit, offset int) ([]domain.RiskScore, error) {
	var rows []models.RiskScoreModel
	err := r.db.WithContext(ctx).
		Where("level = ?", string(level)).
		Order("calculated_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list risk scores by level: %w", err)
	}
	out := make([]domain.RiskScore, 0, len(rows))
	for _, m := range rows {
		rs, err := m.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode risk score %s: %w", m.ID, err)
		}
		out = append(out, rs)
	}
	return out, nil
}
