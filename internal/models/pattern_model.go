package models

import (
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DenialPatternModel represents the denial_patterns table structure.
// The uniqueness constraint mirrors domain.DenialPattern.Key().
type DenialPatternModel struct {
	ID               string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	PayerID          string         `gorm:"not null;uniqueIndex:idx_pattern_key;type:varchar(256)" json:"payer_id"`
	DenialReasonCode string         `gorm:"not null;uniqueIndex:idx_pattern_key;type:varchar(8)" json:"denial_reason_code"`
	ProcedureCode    string         `gorm:"uniqueIndex:idx_pattern_key;type:varchar(16)" json:"procedure_code,omitempty"`
	DiagnosisCode    string         `gorm:"uniqueIndex:idx_pattern_key;type:varchar(16)" json:"diagnosis_code,omitempty"`
	Frequency        float64        `gorm:"not null" json:"frequency"`
	Confidence       float64        `gorm:"not null" json:"confidence"`
	OccurrenceCount  int            `gorm:"not null;default:0" json:"occurrence_count"`
	FirstObserved    time.Time      `gorm:"not null" json:"first_observed"`
	LastObserved     time.Time      `gorm:"not null;index" json:"last_observed"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DenialPatternModel) TableName() string { return "denial_patterns" }

func (p *DenialPatternModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = "pattern-" + uuid.New().String()
	}
	if p.FirstObserved.IsZero() {
		p.FirstObserved = time.Now()
	}
	return nil
}

func (p DenialPatternModel) ToDomain() domain.DenialPattern {
	return domain.DenialPattern{
		ID:               p.ID,
		PayerID:          p.PayerID,
		DenialReasonCode: p.DenialReasonCode,
		ProcedureCode:    p.ProcedureCode,
		DiagnosisCode:    p.DiagnosisCode,
		Frequency:        p.Frequency,
		Confidence:       p.Confidence,
		OccurrenceCount:  p.OccurrenceCount,
		FirstObserved:    p.FirstObserved,
		LastObserved:     p.LastObserved,
	}
}

func (p *DenialPatternModel) FromDomain(dp domain.DenialPattern) {
	p.ID = dp.ID
	p.PayerID = dp.PayerID
	p.DenialReasonCode = dp.DenialReasonCode
	p.ProcedureCode = dp.ProcedureCode
	p.DiagnosisCode = dp.DiagnosisCode
	p.Frequency = dp.Frequency
	p.Confidence = dp.Confidence
	p.OccurrenceCount = dp.OccurrenceCount
	p.FirstObserved = dp.FirstObserved
	p.LastObserved = dp.LastObserved
}

func NewDenialPatternModelFromDomain(dp domain.DenialPattern) *DenialPatternModel {
	m := &DenialPatternModel{}
	m.FromDomain(dp)
	return m
}
