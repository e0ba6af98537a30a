package models

import (
	"encoding/json"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RiskScoreModel represents the risk_scores table structure. Factors is
// stored as a JSON blob: the factor list has a fixed small shape and is
// never queried by its internal fields, so a normalized table would only
// add joins nothing reads (spec.md §4.9/§4.10).
type RiskScoreModel struct {
	ID           string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	ClaimID      string         `gorm:"not null;index;type:varchar(256)" json:"claim_id"`
	CalculatedAt time.Time      `gorm:"not null;index" json:"calculated_at"`
	OverallScore int            `gorm:"not null" json:"overall_score"`
	Level        string         `gorm:"not null;index;type:varchar(10)" json:"level"`
	Factors      string         `gorm:"type:text" json:"factors"`
	Rationale    string         `gorm:"type:text" json:"rationale,omitempty"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RiskScoreModel) TableName() string { return "risk_scores" }

func (r *RiskScoreModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = "risk-score-" + uuid.New().String()
	}
	if r.CalculatedAt.IsZero() {
		r.CalculatedAt = time.Now()
	}
	return nil
}

func (r RiskScoreModel) ToDomain() (domain.RiskScore, error) {
	var factors []domain.FactorResult
	if r.Factors != "" {
		if err := json.Unmarshal([]byte(r.Factors), &factors); err != nil {
			return domain.RiskScore{}, err
		}
	}
	return domain.RiskScore{
		ID:           r.ID,
		ClaimID:      r.ClaimID,
		CalculatedAt: r.CalculatedAt,
		OverallScore: r.OverallScore,
		Level:        domain.RiskLevel(r.Level),
		Factors:      factors,
		Rationale:    r.Rationale,
	}, nil
}

func (r *RiskScoreModel) FromDomain(rs domain.RiskScore) error {
	factorsJSON, err := json.Marshal(rs.Factors)
	if err != nil {
		return err
	}
	r.ID = rs.ID
	r.ClaimID = rs.ClaimID
	r.CalculatedAt = rs.CalculatedAt
	r.OverallScore = rs.OverallScore
	r.Level = string(rs.Level)
	r.Factors = string(factorsJSON)
	r.Rationale = rs.Rationale
	return nil
}

func NewRiskScoreModelFromDomain(rs domain.RiskScore) (*RiskScoreModel, error) {
	m := &RiskScoreModel{}
	if err := m.FromDomain(rs); err != nil {
		return nil, err
	}
	return m, nil
}
