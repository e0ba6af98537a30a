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

// remittanceRepository implements services.RemittanceRepository using GORM.
type remittanceRepository struct {
	db *gorm.DB
}

// NewRemittanceRepository creates a new remittance repository instance.
func NewRemittanceRepository(db *gorm.DB) services.RemittanceRepository {
	return &remittanceRepository{db: db}
}

// Save persists a remittance along with its claims, adjustments, and
// service lines in one transaction (spec.md §4.5 835 assembly).
func (r *remittanceRepository) Save(ctx context.Context, remittance domain.Remittance) (domain.Remittance, error) {
	model := models.NewRemittanceModelFromDomain(remittance)
	err := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Create(model).Error
	if err != nil {
		return domain.Remittance{}, fmt.Errorf("failed to save remittance: %w", err)
	}
	return r.GetByID(ctx, model.ID)
}

// GetByID retrieves a remittance with its full claim/adjustment/line tree.
func (r *remittanceRepository) GetByID(ctx context.Context, id string) (domain.Remittance, error) {
	var model models.RemittanceModel
	err := r.db.WithContext(ctx).
		Preload("Claims.Adjustments").Preload("Claims.ServiceLines").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Remittance{}, domain.ErrRemittanceNotFound
		}
		return domain.Remittance{}, fmt.Errorf("failed to get remittance: %w", err)
	}
	return model.ToDomain(), nil
}

// List returns remittances newest-first with offset pagination, each
// preloaded with its claim/adjustment/line tree.
func (r *remittanceRepository) List(ctx context.Context, limit, offset int) ([]domain.Remittance, error) {
	var rows []models.RemittanceModel
	err := r.db.WithContext(ctx).
		Preload("Claims.Adjustments").Preload("Claims.ServiceLines").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list remittances: %w", err)
	}
	out := make([]domain.Remittance, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}
