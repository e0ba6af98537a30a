package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/models"
	"github.com/clarity-health/claimrisk/internal/services"
	"gorm.io/gorm"
)

// claimRepository implements services.ClaimRepository using GORM.
type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository instance.
func NewClaimRepository(db *gorm.DB) services.ClaimRepository {
	return &claimRepository{db: db}
}

// Save upserts a claim by ID, replacing its lines and diagnoses.
func (r *claimRepository) Save(ctx context.Context, claim domain.Claim) (domain.Claim, error) {
	model := models.NewClaimModelFromDomain(claim)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ClaimModel
		result := tx.First(&existing, "id = ?", model.ID)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			return tx.Session(&gorm.Session{FullSaveAssociations: true}).Create(model).Error
		}

		if err := tx.Where("claim_id = ?", model.ID).Delete(&models.ClaimLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("claim_id = ?", model.ID).Delete(&models.DiagnosisModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&existing).Select("*").Updates(model).Error; err != nil {
			return err
		}
		if len(model.Lines) > 0 {
			if err := tx.Create(&model.Lines).Error; err != nil {
				return err
			}
		}
		if len(model.Diagnoses) > 0 {
			if err := tx.Create(&model.Diagnoses).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Claim{}, fmt.Errorf("failed to save claim: %w", err)
	}
	return r.GetByID(ctx, model.ID)
}

// GetByID retrieves a claim with its lines and diagnoses.
func (r *claimRepository) GetByID(ctx context.Context, id string) (domain.Claim, error) {
	var model models.ClaimModel
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Diagnoses").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Claim{}, domain.ErrClaimNotFound
		}
		return domain.Claim{}, fmt.Errorf("failed to get claim: %w", err)
	}
	return model.ToDomain(), nil
}

// GetByControlNumber retrieves a claim by its provider-assigned control
// number, used by the episode linker's exact-match rule (spec.md §4.7).
func (r *claimRepository) GetByControlNumber(ctx context.Context, claimControlNumber string) (domain.Claim, error) {
	var model models.ClaimModel
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Diagnoses").
		First(&model, "claim_control_number = ?", claimControlNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Claim{}, domain.ErrClaimNotFound
		}
		return domain.Claim{}, fmt.Errorf("failed to get claim by control number: %w", err)
	}
	return model.ToDomain(), nil
}

// FindCandidatesForLinking returns claims sharing the hashed patient
// identifier whose service window falls within [windowStart, windowEnd],
// feeding the linker's date-window fallback match (spec.md §4.7 rule 2).
func (r *claimRepository) FindCandidatesForLinking(ctx context.Context, patientControlNumberHash string, windowStart, windowEnd time.Time) ([]domain.Claim, error) {
	var rows []models.ClaimModel
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Diagnoses").
		Where("patient_control_number = ? AND service_date_start BETWEEN ? AND ?", patientControlNumberHash, windowStart, windowEnd).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find linking candidates: %w", err)
	}
	out := make([]domain.Claim, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

// List returns claims ordered newest-first with simple offset pagination.
func (r *claimRepository) List(ctx context.Context, limit, offset int) ([]domain.Claim, error) {
	var rows []models.ClaimModel
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Diagnoses").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	out := make([]domain.Claim, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}
