package models

import (
	"strings"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimModel represents the claims table structure in the database.
type ClaimModel struct {
	ID                   string         `gorm:"primaryKey;type:varchar(256)" json:"id"`
	PayerID              string         `gorm:"not null;index;type:varchar(256)" json:"payer_id"`
	ProviderID           string         `gorm:"not null;index;type:varchar(256)" json:"provider_id"`
	ClaimControlNumber   string         `gorm:"index;type:varchar(64)" json:"claim_control_number"`
	PatientControlNumber string         `gorm:"index;type:varchar(128)" json:"patient_control_number"` // hashed
	TotalChargeAmount    int64          `gorm:"not null" json:"total_charge_amount"`                   // cents
	ServiceDateStart     time.Time      `gorm:"index" json:"service_date_start"`
	ServiceDateEnd       time.Time      `json:"service_date_end"`
	Status               string         `gorm:"not null;index;type:varchar(20)" json:"status"`
	Warnings             string         `gorm:"type:text" json:"warnings,omitempty"` // newline-joined
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Lines      []ClaimLineModel `gorm:"foreignKey:ClaimID;references:ID" json:"lines,omitempty"`
	Diagnoses  []DiagnosisModel `gorm:"foreignKey:ClaimID;references:ID" json:"diagnoses,omitempty"`
}

func (ClaimModel) TableName() string { return "claims" }

func (c *ClaimModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = "claim-" + uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (c *ClaimModel) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

func (c ClaimModel) ToDomain() domain.Claim {
	lines := make([]domain.ClaimLine, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = l.ToDomain()
	}
	diagnoses := make([]domain.Diagnosis, len(c.Diagnoses))
	for i, d := range c.Diagnoses {
		diagnoses[i] = d.ToDomain()
	}
	var warnings []string
	if c.Warnings != "" {
		warnings = strings.Split(c.Warnings, "\n")
	}
	return domain.Claim{
		ID:                   c.ID,
		PayerID:              c.PayerID,
		ProviderID:           c.ProviderID,
		ClaimControlNumber:   c.ClaimControlNumber,
		PatientControlNumber: c.PatientControlNumber,
		TotalChargeAmount:    domain.Money(c.TotalChargeAmount),
		ServiceDateStart:     c.ServiceDateStart,
		ServiceDateEnd:       c.ServiceDateEnd,
		Status:               domain.ClaimStatus(c.Status),
		Lines:                lines,
		Diagnoses:            diagnoses,
		Warnings:             warnings,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

func (c *ClaimModel) FromDomain(claim domain.Claim) {
	c.ID = claim.ID
	c.PayerID = claim.PayerID
	c.ProviderID = claim.ProviderID
	c.ClaimControlNumber = claim.ClaimControlNumber
	c.PatientControlNumber = claim.PatientControlNumber
	c.TotalChargeAmount = int64(claim.TotalChargeAmount)
	c.ServiceDateStart = claim.ServiceDateStart
	c.ServiceDateEnd = claim.ServiceDateEnd
	c.Status = string(claim.Status)
	c.Warnings = strings.Join(claim.Warnings, "\n")
	c.CreatedAt = claim.CreatedAt
	c.UpdatedAt = claim.UpdatedAt

	c.Lines = make([]ClaimLineModel, len(claim.Lines))
	for i, l := range claim.Lines {
		c.Lines[i].FromDomain(l)
		c.Lines[i].ClaimID = claim.ID
	}
	c.Diagnoses = make([]DiagnosisModel, len(claim.Diagnoses))
	for i, d := range claim.Diagnoses {
		c.Diagnoses[i].FromDomain(d)
		c.Diagnoses[i].ClaimID = claim.ID
	}
}

func NewClaimModelFromDomain(claim domain.Claim) *ClaimModel {
	m := &ClaimModel{}
	m.FromDomain(claim)
	return m
}

// ClaimLineModel represents the claim_lines table structure.
type ClaimLineModel struct {
	ID                 string    `gorm:"primaryKey;type:varchar(256)" json:"id"`
	ClaimID            string    `gorm:"not null;index;type:varchar(256)" json:"claim_id"`
	LineNumber         int       `gorm:"not null" json:"line_number"`
	ProcedureCode      string    `gorm:"type:varchar(16)" json:"procedure_code"`
	ProcedureCodeValid bool      `gorm:"not null;default:false" json:"procedure_code_valid"`
	Modifiers          string    `gorm:"type:varchar(32)" json:"modifiers,omitempty"` // comma-joined
	ChargeAmount       int64     `gorm:"not null" json:"charge_amount"`
	Units              float64   `gorm:"not null;default:1" json:"units"`
	ServiceDate        time.Time `json:"service_date"`
	RevenueCode        string    `gorm:"type:varchar(8)" json:"revenue_code,omitempty"`
}

func (ClaimLineModel) TableName() string { return "claim_lines" }

func (l *ClaimLineModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = "claim-line-" + uuid.New().String()
	}
	return nil
}

func (l ClaimLineModel) ToDomain() domain.ClaimLine {
	var mods []string
	if l.Modifiers != "" {
		mods = strings.Split(l.Modifiers, ",")
	}
	return domain.ClaimLine{
		ID:                 l.ID,
		ClaimID:            l.ClaimID,
		LineNumber:         l.LineNumber,
		ProcedureCode:      l.ProcedureCode,
		ProcedureCodeValid: l.ProcedureCodeValid,
		Modifiers:          mods,
		ChargeAmount:       domain.Money(l.ChargeAmount),
		Units:              l.Units,
		ServiceDate:        l.ServiceDate,
		RevenueCode:        l.RevenueCode,
	}
}

func (l *ClaimLineModel) FromDomain(line domain.ClaimLine) {
	l.ID = line.ID
	l.ClaimID = line.ClaimID
	l.LineNumber = line.LineNumber
	l.ProcedureCode = line.ProcedureCode
	l.ProcedureCodeValid = line.ProcedureCodeValid
	l.Modifiers = strings.Join(line.Modifiers, ",")
	l.ChargeAmount = int64(line.ChargeAmount)
	l.Units = line.Units
	l.ServiceDate = line.ServiceDate
	l.RevenueCode = line.RevenueCode
}

// DiagnosisModel represents the diagnoses table structure.
type DiagnosisModel struct {
	ID         string `gorm:"primaryKey;type:varchar(256)" json:"id"`
	ClaimID    string `gorm:"not null;index;type:varchar(256)" json:"claim_id"`
	CodeSystem string `gorm:"type:varchar(16)" json:"code_system"`
	Code       string `gorm:"type:varchar(16);index" json:"code"`
	Principal  bool   `gorm:"not null;default:false" json:"principal"`
	Sequence   int    `gorm:"not null;default:0" json:"sequence"`
	IsValid    bool   `gorm:"not null;default:false" json:"is_valid"`
}

func (DiagnosisModel) TableName() string { return "diagnoses" }

func (d *DiagnosisModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = "diagnosis-" + uuid.New().String()
	}
	return nil
}

func (d DiagnosisModel) ToDomain() domain.Diagnosis {
	return domain.Diagnosis{
		ID:         d.ID,
		ClaimID:    d.ClaimID,
		CodeSystem: d.CodeSystem,
		Code:       d.Code,
		Principal:  d.Principal,
		Sequence:   d.Sequence,
		IsValid:    d.IsValid,
	}
}

func (d *DiagnosisModel) FromDomain(diag domain.Diagnosis) {
	d.ID = diag.ID
	d.ClaimID = diag.ClaimID
	d.CodeSystem = diag.CodeSystem
	d.Code = diag.Code
	d.Principal = diag.Principal
	d.Sequence = diag.Sequence
	d.IsValid = diag.IsValid
}
