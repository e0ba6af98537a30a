package domain

import (
	"regexp"
	"time"
)

// ClaimStatus enumerates the lifecycle of a persisted claim.
type ClaimStatus string

const (
	ClaimStatusSubmitted  ClaimStatus = "submitted"
	ClaimStatusProcessing ClaimStatus = "processing"
	ClaimStatusAdjudicated ClaimStatus = "adjudicated"
	ClaimStatusError      ClaimStatus = "error"
)

var (
	cptPattern    = regexp.MustCompile(`^[0-9]{5}$`)
	hcpcsPattern  = regexp.MustCompile(`^[A-Z][0-9]{4}$`)
	icd10Pattern  = regexp.MustCompile(`^[A-Z][0-9]{2}(\.[0-9]{0,2})?$`)
	icd9Pattern   = regexp.MustCompile(`^[0-9]{3,5}(\.[0-9]{0,2})?$`)
)

// ValidateProcedureCode reports whether code is a well-formed CPT or HCPCS
// procedure code, per spec.md §4.2: CPT ^[0-9]{5}$ or HCPCS ^[A-Z][0-9]{4}$,
// with an optional "-XX" modifier suffix that is stripped before matching.
func ValidateProcedureCode(code string) bool {
	if code == "" {
		return false
	}
	base := code
	if idx := len(code) - 3; idx > 0 && code[idx] == '-' {
		base = code[:idx]
	}
	return cptPattern.MatchString(base) || hcpcsPattern.MatchString(base)
}

// ValidateDiagnosisCode reports whether code matches ICD-10 or ICD-9 shape
// and is within the [3,10] length bound from spec.md §4.2.
func ValidateDiagnosisCode(code string) bool {
	if len(code) < 3 || len(code) > 10 {
		return false
	}
	return icd10Pattern.MatchString(code) || icd9Pattern.MatchString(code)
}

// Diagnosis is one entry of a claim's ordered diagnosis list (HI segment).
type Diagnosis struct {
	ID          string `json:"id"`
	ClaimID     string `json:"claim_id"`
	CodeSystem  string `json:"code_system"` // e.g. "ABK" (ICD-10-CM principal), "ABF" (ICD-10-CM secondary)
	Code        string `json:"code"`
	Principal   bool   `json:"principal"`
	Sequence    int    `json:"sequence"` // 0-based order as they appeared in HI
	IsValid     bool   `json:"is_valid"`
}

// ClaimLine is a single service line (SV1/SV2) belonging to a Claim.
type ClaimLine struct {
	ID                 string    `json:"id"`
	ClaimID            string    `json:"claim_id"`
	LineNumber         int       `json:"line_number"` // 1-based
	ProcedureCode      string    `json:"procedure_code"`
	ProcedureCodeValid bool      `json:"procedure_code_valid"`
	Modifiers          []string  `json:"modifiers"` // up to 4
	ChargeAmount       Money     `json:"charge_amount"`
	Units              float64   `json:"units"`
	ServiceDate        time.Time `json:"service_date"`
	RevenueCode        string    `json:"revenue_code,omitempty"`
}

// Claim is the persisted representation of an 837 claim.
type Claim struct {
	ID                   string      `json:"id"`
	PayerID              string      `json:"payer_id"`
	ProviderID           string      `json:"provider_id"`
	ClaimControlNumber   string      `json:"claim_control_number"` // provider-assigned (CLM01)
	PatientControlNumber string      `json:"patient_control_number"` // hashed identifier
	TotalChargeAmount    Money       `json:"total_charge_amount"`
	ServiceDateStart     time.Time   `json:"service_date_start"`
	ServiceDateEnd       time.Time   `json:"service_date_end"`
	Status               ClaimStatus `json:"status"`
	Lines                []ClaimLine `json:"lines"`
	Diagnoses            []Diagnosis `json:"diagnoses"`
	Warnings             []string    `json:"warnings,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// PrincipalDiagnosis returns the claim's principal diagnosis, if any.
func (c *Claim) PrincipalDiagnosis() *Diagnosis {
	for i := range c.Diagnoses {
		if c.Diagnoses[i].Principal {
			return &c.Diagnoses[i]
		}
	}
	return nil
}

// LineChargeTotal sums charge_amount across all lines.
func (c *Claim) LineChargeTotal() Money {
	var total Money
	for _, l := range c.Lines {
		total += l.ChargeAmount
	}
	return total
}

// CheckChargeInvariant verifies invariant 1 from spec.md §8:
// |sum(lines.charge_amount) - total_charge_amount| <= 0.01.
// Returns a ParseWarning of kind "charge_mismatch" when violated, nil otherwise.
func (c *Claim) CheckChargeInvariant() *ParseWarning {
	lineTotal := c.LineChargeTotal()
	if lineTotal.WithinTolerance(c.TotalChargeAmount, CentTolerance) {
		return nil
	}
	return &ParseWarning{
		Kind:    "charge_mismatch",
		Segment: "CLM",
		Message: "sum of line charges does not match claim total charge",
	}
}
