package domain

import "time"

// DenialPattern is a recurring (payer, reason, optional procedure/diagnosis)
// tuple distilled from denied episodes (spec.md §4.8).
type DenialPattern struct {
	ID                string    `json:"id"`
	PayerID           string    `json:"payer_id"`
	DenialReasonCode  string    `json:"denial_reason_code"`
	ProcedureCode     string    `json:"procedure_code,omitempty"`
	DiagnosisCode     string    `json:"diagnosis_code,omitempty"`
	Frequency         float64   `json:"frequency"`          // 0..1
	Confidence        float64   `json:"confidence"`         // 0..1
	OccurrenceCount   int       `json:"occurrence_count"`
	FirstObserved     time.Time `json:"first_observed"`
	LastObserved      time.Time `json:"last_observed"`
}

// Key returns the uniqueness key from spec.md §3:
// (payer_id, denial_reason_code, procedure_code?, diagnosis_code?).
func (p *DenialPattern) Key() string {
	return p.PayerID + "|" + p.DenialReasonCode + "|" + p.ProcedureCode + "|" + p.DiagnosisCode
}

// ComputeConfidence implements spec.md §4.8 step 5: confidence = min(1.0, occurrence_count / 20).
func ComputeConfidence(occurrenceCount int) float64 {
	c := float64(occurrenceCount) / 20.0
	if c > 1.0 {
		c = 1.0
	}
	return c
}
