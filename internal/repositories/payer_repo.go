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

// payerRepository implements services.PayerRepository using GORM.
type payerRepository struct {
	db *gorm.DB
}

// NewPayerRepository creates a new payer repository instance.
func NewPayerRepository(db *gorm.DB) services.PayerRepository {
	return &payerRepository{db: db}
}

// GetOrCreateByExternalID resolves a payer by its EDI external id,
// creating it on first encounter (spec.md §4.6 identity resolution).
func (r *payerRepository) GetOrCreateByExternalID(ctx context.Context, payerIDExternal, name string) (domain.Payer, error) {
	var model models.PayerModel
	result := r.db.WithContext(ctx).First(&model, "payer_id_external = ?", payerIDExternal)
	if result.Error == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return domain.Payer{}, fmt.Errorf("failed to look up payer: %w", result.Error)
	}

	payer := domain.Payer{PayerIDExternal: payerIDExternal, Name: name}
	if err := payer.Validate(); err != nil {
		return domain.Payer{}, err
	}
	newModel := models.NewPayerModelFromDomain(payer)
	if err := r.db.WithContext(ctx).Create(newModel).Error; err != nil {
		// Another concurrent ingest may have created it first; re-read.
		var existing models.PayerModel
		if reread := r.db.WithContext(ctx).First(&existing, "payer_id_external = ?", payerIDExternal); reread.Error == nil {
			return existing.ToDomain(), nil
		}
		return domain.Payer{}, fmt.Errorf("failed to create payer: %w", err)
	}
	return newModel.ToDomain(), nil
}

// GetByID retrieves a payer by its internal ID.
func (r *payerRepository) GetByID(ctx context.Context, id string) (domain.Payer, error) {
	var model models.PayerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payer{}, domain.ErrPayerNotFound
		}
		return domain.Payer{}, fmt.Errorf("failed to get payer: %w", err)
	}
	return model.ToDomain(), nil
}

// List returns all payers, ordered by name.
func (r *payerRepository) List(ctx context.Context) ([]domain.Payer, error) {
	var rows []models.PayerModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payers: %w", err)
	}
	out := make([]domain.Payer, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}
