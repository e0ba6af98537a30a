package models

import (
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayerModel represents the payers table structure in the database.
type PayerModel struct {
	ID              string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	PayerIDExternal string         `gorm:"not null;uniqueIndex;type:varchar(64)" json:"payer_id_external"`
	Name            string         `gorm:"not null;type:varchar(255)" json:"name"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PayerModel) TableName() string { return "payers" }

func (p *PayerModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = "payer-" + uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (p *PayerModel) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

func (p PayerModel) ToDomain() domain.Payer {
	return domain.Payer{
		ID:              p.ID,
		PayerIDExternal: p.PayerIDExternal,
		Name:            p.Name,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (p *PayerModel) FromDomain(payer domain.Payer) {
	p.ID = payer.ID
	p.PayerIDExternal = payer.PayerIDExternal
	p.Name = payer.Name
	p.CreatedAt = payer.CreatedAt
	p.UpdatedAt = payer.UpdatedAt
}

func NewPayerModelFromDomain(payer domain.Payer) *PayerModel {
	m := &PayerModel{}
	m.FromDomain(payer)
	return m
}

// ProviderModel represents the providers table structure in the database.
type ProviderModel struct {
	ID           string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	NPI          string         `gorm:"not null;uniqueIndex;type:varchar(10)" json:"npi"`
	Name         string         `gorm:"not null;type:varchar(255)" json:"name"`
	TaxonomyCode string         `gorm:"type:varchar(20)" json:"taxonomy_code,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ProviderModel) TableName() string { return "providers" }

func (p *ProviderModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = "provider-" + uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	return nil
}

func (p *ProviderModel) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

func (p ProviderModel) ToDomain() domain.Provider {
	return domain.Provider{
		ID:           p.ID,
		NPI:          p.NPI,
		Name:         p.Name,
		TaxonomyCode: p.TaxonomyCode,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (p *ProviderModel) FromDomain(provider domain.Provider) {
	p.ID = provider.ID
	p.NPI = provider.NPI
	p.Name = provider.Name
	p.TaxonomyCode = provider.TaxonomyCode
	p.CreatedAt = provider.CreatedAt
	p.UpdatedAt = provider.UpdatedAt
}

func NewProviderModelFromDomain(provider domain.Provider) *ProviderModel {
	m := &ProviderModel{}
	m.FromDomain(provider)
	return m
}
