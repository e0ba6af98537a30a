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

// providerRepository implements services.ProviderRepository using GORM.
type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository instance.
func NewProviderRepository(db *gorm.DB) services.ProviderRepository {
	return &providerRepository{db: db}
}

// GetOrCreateByNPI resolves a provider by NPI, creating it on first
// encounter. Providers without an NPI are created fresh each time, since
// there is nothing stable to key a lookup on.
func (r *providerRepository) GetOrCreateByNPI(ctx context.Context, npi, name, taxonomyCode string) (domain.Provider, error) {
	if npi != "" {
		var model models.ProviderModel
		result := r.db.WithContext(ctx).First(&model, "npi = ?", npi)
		if result.Error == nil {
			return model.ToDomain(), nil
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.Provider{}, fmt.Errorf("failed to look up provider: %w", result.Error)
		}
	}

	provider := domain.Provider{NPI: npi, Name: name, TaxonomyCode: taxonomyCode}
	if err := provider.Validate(); err != nil {
		return domain.Provider{}, err
	}
	newModel := models.NewProviderModelFromDomain(provider)
	if err := r.db.WithContext(ctx).Create(newModel).Error; err != nil {
		if npi != "" {
			var existing models.ProviderModel
			if reread := r.db.WithContext(ctx).First(&existing, "npi = ?", npi); reread.Error == nil {
				return existing.ToDomain(), nil
			}
		}
		return domain.Provider{}, fmt.Errorf("failed to create provider: %w", err)
	}
	return newModel.ToDomain(), nil
}

// GetByID retrieves a provider by its internal ID.
func (r *providerRepository) GetByID(ctx context.Context, id string) (domain.Provider, error) {
	var model models.ProviderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Provider{}, domain.ErrProviderNotFound
		}
		return domain.Provider{}, fmt.Errorf("failed to get provider: %w", err)
	}
	return model.ToDomain(), nil
}
