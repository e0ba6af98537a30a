package models

import (
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogModel represents the audit_logs table structure.
type AuditLogModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(256)" json:"id"`
	RequestID   string    `gorm:"index;type:varchar(64)" json:"request_id"`
	Method      string    `gorm:"type:varchar(10)" json:"method"`
	Path        string    `gorm:"type:varchar(255)" json:"path"`
	StatusCode  int       `gorm:"not null" json:"status_code"`
	PrincipalID string    `gorm:"index;type:varchar(128)" json:"principal_id,omitempty"`
	DurationMS  int64     `gorm:"not null;default:0" json:"duration_ms"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Detail      string    `gorm:"type:text" json:"detail,omitempty"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }

func (a *AuditLogModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = "audit-" + uuid.New().String()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return nil
}

func (a AuditLogModel) ToDomain() domain.AuditLog {
	return domain.AuditLog{
		ID:          a.ID,
		RequestID:   a.RequestID,
		Method:      a.Method,
		Path:        a.Path,
		StatusCode:  a.StatusCode,
		PrincipalID: a.PrincipalID,
		DurationMS:  a.DurationMS,
		Timestamp:   a.Timestamp,
		Detail:      a.Detail,
	}
}

func (a *AuditLogModel) FromDomain(al domain.AuditLog) {
	a.ID = al.ID
	a.RequestID = al.RequestID
	a.Method = al.Method
	a.Path = al.Path
	a.StatusCode = al.StatusCode
	a.PrincipalID = al.PrincipalID
	a.DurationMS = al.DurationMS
	a.Timestamp = al.Timestamp
	a.Detail = al.Detail
}

func NewAuditLogModelFromDomain(al domain.AuditLog) *AuditLogModel {
	m := &AuditLogModel{}
	m.FromDomain(al)
	return m
}
