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

// patternRepository implements services.PatternRepository using GORM.
type patternRepository struct {
	db *gorm.DB
}

// NewPatternRepository creates a new denial pattern repository instance.
func NewPatternRepository(db *gorm.DB) services.PatternRepository {
	return &patternRepository{db: db}
}

// Upsert writes a pattern keyed by (payer_id, denial_reason_code,
// procedure_code, diagnosis_code), so repeated mining sweeps update the
// same row instead of accumulating duplicates (spec.md §4.8 step 6).
func (r *patternRepository) Upsert(ctx context.Context, pattern domain.DenialPattern) (domain.DenialPattern, error) {
	model := models.NewDenialPatternModelFromDomain(pattern)

	var existing models.DenialPatternModel
	result := r.db.WithContext(ctx).First(&existing,
		"payer_id = ? AND denial_reason_code = ? AND procedure_code = ? AND diagnosis_code = ?",
		pattern.PayerID, pattern.DenialReasonCode, pattern.ProcedureCode, pattern.DiagnosisCode)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.DenialPattern{}, fmt.Errorf("failed to check existing pattern: %w", result.Error)
		}
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return domain.DenialPattern{}, fmt.Errorf("failed to create pattern: %w", err)
		}
		return model.ToDomain(), nil
	}

	model.ID = existing.ID
	model.FirstObserved = existing.FirstObserved
	if err := r.db.WithContext(ctx).Model(&existing).Select("*").Updates(model).Error; err != nil {
		return domain.DenialPattern{}, fmt.Errorf("failed to update pattern: %w", err)
	}
	return model.ToDomain(), nil
}

// ListByPayer returns all mined patterns for one payer.
func (r *patternRepository) ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error) {
	var rows []models.DenialPatternModel
	err := r.db.WithContext(ctx).Where("payer_id = ?", payerID).
		Order("occurrence_count DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns by payer: %w", err)
	}
	out := make([]domain.DenialPattern, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

// ListAll returns every mined pattern, used by the risk scorer's
// pattern-match factor (spec.md §4.9) and by reporting endpoints.
func (r *patternRepository) ListAll(ctx context.Context) ([]domain.DenialPattern, error) {
	var rows []models.DenialPatternModel
	err := r.db.WithContext(ctx).Order("occurrence_count DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	out := make([]domain.DenialPattern, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}
