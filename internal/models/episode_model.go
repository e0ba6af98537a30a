package models

import (
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EpisodeModel represents the episodes table structure.
type EpisodeModel struct {
	ID              string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	ClaimID         string         `gorm:"not null;uniqueIndex;type:varchar(256)" json:"claim_id"`
	RemittanceID    string         `gorm:"index;type:varchar(256)" json:"remittance_id"`
	Status          string         `gorm:"not null;index;type:varchar(20)" json:"status"`
	DenialCount     int            `gorm:"not null;default:0" json:"denial_count"`
	TotalPaid       int64          `gorm:"not null;default:0" json:"total_paid"`
	TotalAdjustment int64          `gorm:"not null;default:0" json:"total_adjustment"`
	FirstSeenAt     time.Time      `gorm:"not null" json:"first_seen_at"`
	LastUpdatedAt   time.Time      `gorm:"not null;index" json:"last_updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (EpisodeModel) TableName() string { return "episodes" }

func (e *EpisodeModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = "episode-" + uuid.New().String()
	}
	if e.FirstSeenAt.IsZero() {
		e.FirstSeenAt = time.Now()
	}
	if e.LastUpdatedAt.IsZero() {
		e.LastUpdatedAt = time.Now()
	}
	return nil
}

func (e *EpisodeModel) BeforeUpdate(tx *gorm.DB) error {
	e.LastUpdatedAt = time.Now()
	return nil
}

func (e EpisodeModel) ToDomain() domain.Episode {
	return domain.Episode{
		ID:              e.ID,
		ClaimID:         e.ClaimID,
		RemittanceID:    e.RemittanceID,
		Status:          domain.EpisodeStatus(e.Status),
		DenialCount:     e.DenialCount,
		TotalPaid:       domain.Money(e.TotalPaid),
		TotalAdjustment: domain.Money(e.TotalAdjustment),
		FirstSeenAt:     e.FirstSeenAt,
		LastUpdatedAt:   e.LastUpdatedAt,
	}
}

func (e *EpisodeModel) FromDomain(ep domain.Episode) {
	e.ID = ep.ID
	e.ClaimID = ep.ClaimID
	e.RemittanceID = ep.RemittanceID
	e.Status = string(ep.Status)
	e.DenialCount = ep.DenialCount
	e.TotalPaid = int64(ep.TotalPaid)
	e.TotalAdjustment = int64(ep.TotalAdjustment)
	e.FirstSeenAt = ep.FirstSeenAt
	e.LastUpdatedAt = ep.LastUpdatedAt
}

func NewEpisodeModelFromDomain(ep domain.Episode) *EpisodeModel {
	m := &EpisodeModel{}
	m.FromDomain(ep)
	return m
}
