package domain

import "time"

// Payer is an immutable identity resolved from the EDI payer name/id
// segments (NM1*PR). Created on first encounter and shared by many claims.
type Payer struct {
	ID               string    `json:"id"`
	PayerIDExternal  string    `json:"payer_id_external"` // opaque string from EDI (NM1*PR*2*...*PI*<id>)
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks the minimal identity fields required to persist a payer.
func (p *Payer) Validate() error {
	if p.PayerIDExternal == "" {
		return NewInputError("invalid_payer", "payer_id_external is required")
	}
	if p.Name == "" {
		return NewInputError("invalid_payer", "payer name is required")
	}
	return nil
}

// Provider is an immutable identity keyed by NPI. Created or reused by NPI.
type Provider struct {
	ID            string    `json:"id"`
	NPI           string    `json:"npi"` // 10-char identifier, unique when present
	Name          string    `json:"name"`
	TaxonomyCode  string    `json:"taxonomy_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the minimal identity fields required to persist a provider.
func (p *Provider) Validate() error {
	if p.NPI != "" && len(p.NPI) != 10 {
		return NewInputError("invalid_provider", "npi must be 10 characters when present")
	}
	if p.Name == "" {
		return NewInputError("invalid_provider", "provider name is required")
	}
	return nil
}
