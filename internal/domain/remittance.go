package domain

import "time"

// Adjustment is one CAS-segment triple attributed to a single group code.
type Adjustment struct {
	ID               string `json:"id"`
	RemittanceClaimID string `json:"remittance_claim_id"`
	GroupCode        string `json:"group_code"` // CO, PR, OA, OI, OR...
	ReasonCode       string `json:"reason_code"`
	Amount           Money  `json:"amount"`
	Quantity         float64 `json:"quantity"`
}

// RemittanceServiceLine is a single SVC segment within a remittance claim.
type RemittanceServiceLine struct {
	ID                string  `json:"id"`
	RemittanceClaimID string  `json:"remittance_claim_id"`
	ProcedureCode     string  `json:"procedure_code"`
	ChargeAmount      Money   `json:"charge_amount"`
	PaidAmount        Money   `json:"paid_amount"`
	Units             float64 `json:"units"`
}

// RemittanceClaim is one CLP block within an 835 remittance, carrying the
// hook (claim_control_number) back to the originating Claim.
type RemittanceClaim struct {
	ID                    string                   `json:"id"`
	RemittanceID          string                   `json:"remittance_id"`
	ClaimControlNumber    string                   `json:"claim_control_number"` // payer-assigned per CLP01
	ClaimStatusCode       string                   `json:"claim_status_code"`    // CLP02
	ChargeAmount          Money                    `json:"charge_amount"`
	PaidAmount            Money                    `json:"paid_amount"`
	PatientResponsibility Money                    `json:"patient_responsibility"`
	Adjustments           []Adjustment             `json:"adjustments"`
	ServiceLines          []RemittanceServiceLine  `json:"service_lines"`
}

// TotalAdjustmentAmount sums all adjustment amounts for this remittance claim.
func (rc *RemittanceClaim) TotalAdjustmentAmount() Money {
	var total Money
	for _, a := range rc.Adjustments {
		total += a.Amount
	}
	return total
}

// CheckPaymentInvariant verifies invariant 2 from spec.md §3:
// sum(paid_amount + adjustments.amount) ≈ charge_amount within ±0.01,
// as a warning (payer data can be lossy).
func (rc *RemittanceClaim) CheckPaymentInvariant() *ParseWarning {
	total := rc.PaidAmount.Add(rc.TotalAdjustmentAmount())
	if total.WithinTolerance(rc.ChargeAmount, CentTolerance) {
		return nil
	}
	return &ParseWarning{
		Kind:    "payment_mismatch",
		Segment: "CLP",
		Message: "paid amount plus adjustments does not reconcile against charge amount",
	}
}

// DenialReasonCodes for a remittance claim are the reason codes of
// adjustments whose group code marks contractual/other denial reasons.
func (rc *RemittanceClaim) DenialReasonCodes() []string {
	codes := make([]string, 0, len(rc.Adjustments))
	for _, a := range rc.Adjustments {
		codes = append(codes, a.ReasonCode)
	}
	return codes
}

// Remittance is the persisted representation of an 835 transaction.
type Remittance struct {
	ID                     string             `json:"id"`
	PayerID                string             `json:"payer_id"`
	RemittanceControlNumber string            `json:"remittance_control_number"` // TRN02
	PaymentAmount          Money              `json:"payment_amount"`            // BPR02
	PaymentDate            time.Time          `json:"payment_date"`              // BPR16
	PaymentMethod          string             `json:"payment_method"`            // BPR04, preserved verbatim
	Claims                 []RemittanceClaim  `json:"claims"`
	Warnings               []string           `json:"warnings,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}
