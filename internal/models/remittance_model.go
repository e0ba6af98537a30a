package models

import (
	"strings"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RemittanceModel represents the remittances table structure.
type RemittanceModel struct {
	ID                     string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	PayerID                string         `gorm:"not null;index;type:varchar(256)" json:"payer_id"`
	RemittanceControlNumber string        `gorm:"index;type:varchar(64)" json:"remittance_control_number"`
	PaymentAmount          int64          `gorm:"not null" json:"payment_amount"`
	PaymentDate            time.Time      `gorm:"index" json:"payment_date"`
	PaymentMethod          string         `gorm:"type:varchar(8)" json:"payment_method,omitempty"`
	Warnings               string         `gorm:"type:text" json:"warnings,omitempty"`
	CreatedAt              time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Claims []RemittanceClaimModel `gorm:"foreignKey:RemittanceID;references:ID" json:"claims,omitempty"`
}

func (RemittanceModel) TableName() string { return "remittances" }

func (r *RemittanceModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = "remittance-" + uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	return nil
}

func (r *RemittanceModel) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	return nil
}

func (r RemittanceModel) ToDomain() domain.Remittance {
	claims := make([]domain.RemittanceClaim, len(r.Claims))
	for i, c := range r.Claims {
		claims[i] = c.ToDomain()
	}
	var warnings []string
	if r.Warnings != "" {
		warnings = strings.Split(r.Warnings, "\n")
	}
	return domain.Remittance{
		ID:                      r.ID,
		PayerID:                 r.PayerID,
		RemittanceControlNumber: r.RemittanceControlNumber,
		PaymentAmount:           domain.Money(r.PaymentAmount),
		PaymentDate:             r.PaymentDate,
		PaymentMethod:           r.PaymentMethod,
		Claims:                  claims,
		Warnings:                warnings,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

func (r *RemittanceModel) FromDomain(rem domain.Remittance) {
	r.ID = rem.ID
	r.PayerID = rem.PayerID
	r.RemittanceControlNumber = rem.RemittanceControlNumber
	r.PaymentAmount = int64(rem.PaymentAmount)
	r.PaymentDate = rem.PaymentDate
	r.PaymentMethod = rem.PaymentMethod
	r.Warnings = strings.Join(rem.Warnings, "\n")
	r.CreatedAt = rem.CreatedAt
	r.UpdatedAt = rem.UpdatedAt

	r.Claims = make([]RemittanceClaimModel, len(rem.Claims))
	for i, c := range rem.Claims {
		r.Claims[i].FromDomain(c)
		r.Claims[i].RemittanceID = rem.ID
	}
}

func NewRemittanceModelFromDomain(rem domain.Remittance) *RemittanceModel {
	m := &RemittanceModel{}
	m.FromDomain(rem)
	return m
}

// RemittanceClaimModel represents the remittance_claims table structure.
type RemittanceClaimModel struct {
	ID                    string `gorm:"primaryKey;type:varchar(256)" json:"id"`
	RemittanceID          string `gorm:"not null;index;type:varchar(256)" json:"remittance_id"`
	ClaimControlNumber    string `gorm:"index;type:varchar(64)" json:"claim_control_number"`
	ClaimStatusCode       string `gorm:"type:varchar(4)" json:"claim_status_code"`
	ChargeAmount          int64  `gorm:"not null" json:"charge_amount"`
	PaidAmount            int64  `gorm:"not null" json:"paid_amount"`
	PatientResponsibility int64  `gorm:"not null;default:0" json:"patient_responsibility"`

	Adjustments  []AdjustmentModel           `gorm:"foreignKey:RemittanceClaimID;references:ID" json:"adjustments,omitempty"`
	ServiceLines []RemittanceServiceLineModel `gorm:"foreignKey:RemittanceClaimID;references:ID" json:"service_lines,omitempty"`
}

func (RemittanceClaimModel) TableName() string { return "remittance_claims" }

func (c *RemittanceClaimModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = "remit-claim-" + uuid.New().String()
	}
	return nil
}

func (c RemittanceClaimModel) ToDomain() domain.RemittanceClaim {
	adjustments := make([]domain.Adjustment, len(c.Adjustments))
	for i, a := range c.Adjustments {
		adjustments[i] = a.ToDomain()
	}
	lines := make([]domain.RemittanceServiceLine, len(c.ServiceLines))
	for i, l := range c.ServiceLines {
		lines[i] = l.ToDomain()
	}
	return domain.RemittanceClaim{
		ID:                    c.ID,
		RemittanceID:          c.RemittanceID,
		ClaimControlNumber:    c.ClaimControlNumber,
		ClaimStatusCode:       c.ClaimStatusCode,
		ChargeAmount:          domain.Money(c.ChargeAmount),
		PaidAmount:            domain.Money(c.PaidAmount),
		PatientResponsibility: domain.Money(c.PatientResponsibility),
		Adjustments:           adjustments,
		ServiceLines:          lines,
	}
}

func (c *RemittanceClaimModel) FromDomain(rc domain.RemittanceClaim) {
	c.ID = rc.ID
	c.RemittanceID = rc.RemittanceID
	c.ClaimControlNumber = rc.ClaimControlNumber
	c.ClaimStatusCode = rc.ClaimStatusCode
	c.ChargeAmount = int64(rc.ChargeAmount)
	c.PaidAmount = int64(rc.PaidAmount)
	c.PatientResponsibility = int64(rc.PatientResponsibility)

	c.Adjustments = make([]AdjustmentModel, len(rc.Adjustments))
	for i, a := range rc.Adjustments {
		c.Adjustments[i].FromDomain(a)
		c.Adjustments[i].RemittanceClaimID = rc.ID
	}
	c.ServiceLines = make([]RemittanceServiceLineModel, len(rc.ServiceLines))
	for i, l := range rc.ServiceLines {
		c.ServiceLines[i].FromDomain(l)
		c.ServiceLines[i].RemittanceClaimID = rc.ID
	}
}

// AdjustmentModel represents the adjustments table structure (CAS segments).
type AdjustmentModel struct {
	ID                string  `gorm:"primaryKey;type:varchar(256)" json:"id"`
	RemittanceClaimID string  `gorm:"not null;index;type:varchar(256)" json:"remittance_claim_id"`
	GroupCode         string  `gorm:"type:varchar(4);index" json:"group_code"`
	ReasonCode        string  `gorm:"type:varchar(8);index" json:"reason_code"`
	Amount            int64   `gorm:"not null" json:"amount"`
	Quantity          float64 `gorm:"not null;default:0" json:"quantity"`
}

func (AdjustmentModel) TableName() string { return "adjustments" }

func (a *AdjustmentModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = "adjustment-" + uuid.New().String()
	}
	return nil
}

func (a AdjustmentModel) ToDomain() domain.Adjustment {
	return domain.Adjustment{
		ID:                a.ID,
		RemittanceClaimID: a.RemittanceClaimID,
		GroupCode:         a.GroupCode,
		ReasonCode:        a.ReasonCode,
		Amount:            domain.Money(a.Amount),
		Quantity:          a.Quantity,
	}
}

func (a *AdjustmentModel) FromDomain(adj domain.Adjustment) {
	a.ID = adj.ID
	a.RemittanceClaimID = adj.RemittanceClaimID
	a.GroupCode = adj.GroupCode
	a.ReasonCode = adj.ReasonCode
	a.Amount = int64(adj.Amount)
	a.Quantity = adj.Quantity
}

// RemittanceServiceLineModel represents the remittance_service_lines table.
type RemittanceServiceLineModel struct {
	ID                string `gorm:"primaryKey;type:varchar(256)" json:"id"`
	RemittanceClaimID string `gorm:"not null;index;type:varchar(256)" json:"remittance_claim_id"`
	ProcedureCode     string `gorm:"type:varchar(16)" json:"procedure_code"`
	ChargeAmount      int64  `gorm:"not null" json:"charge_amount"`
	PaidAmount        int64  `gorm:"not null" json:"paid_amount"`
	Units             float64 `gorm:"not null;default:1" json:"units"`
}

func (RemittanceServiceLineModel) TableName() string { return "remittance_service_lines" }

func (l *RemittanceServiceLineModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = "remit-line-" + uuid.New().String()
	}
	return nil
}

func (l RemittanceServiceLineModel) ToDomain() domain.RemittanceServiceLine {
	return domain.RemittanceServiceLine{
		ID:                l.ID,
		RemittanceClaimID: l.RemittanceClaimID,
		ProcedureCode:     l.ProcedureCode,
		ChargeAmount:      domain.Money(l.ChargeAmount),
		PaidAmount:        domain.Money(l.PaidAmount),
		Units:             l.Units,
	}
}

func (l *RemittanceServiceLineModel) FromDomain(line domain.RemittanceServiceLine) {
	l.ID = line.ID
	l.RemittanceClaimID = line.RemittanceClaimID
	l.ProcedureCode = line.ProcedureCode
	l.ChargeAmount = int64(line.ChargeAmount)
	l.PaidAmount = int64(line.PaidAmount)
	l.Units = line.Units
}
