package risk

import (
	"fmt"

	"github.com/clarity-health/claimrisk/internal/domain"
)

// PatternMatchFactor accumulates risk from DenialPatterns applicable to
// the claim's payer whose procedure/diagnosis codes appear on the claim
// (spec.md §4.9 "Pattern-match factor").
type PatternMatchFactor struct {
	weight float64
}

// NewPatternMatchFactor builds a PatternMatchFactor with the given weight.
func NewPatternMatchFactor(weight float64) *PatternMatchFactor {
	return &PatternMatchFactor{weight: weight}
}

func (f *PatternMatchFactor) Name() string    { return "pattern_match" }
func (f *PatternMatchFactor) Weight() float64 { return f.weight }

func (f *PatternMatchFactor) Evaluate(claim domain.Claim, ec EvalContext) domain.FactorResult {
	patterns, err := ec.Patterns.ListByPayer(ec.Ctx, claim.PayerID)
	if err != nil {
		return domain.FactorResult{Name: f.Name(), Score: 0, Weight: 0, Reasons: []string{"pattern lookup failed: " + err.Error()}}
	}

	procedureCodes := make(map[string]bool, len(claim.Lines))
	for _, l := range claim.Lines {
		procedureCodes[l.ProcedureCode] = true
	}
	diagnosisCodes := make(map[string]bool, len(claim.Diagnoses))
	for _, d := range claim.Diagnoses {
		diagnosisCodes[d.Code] = true
	}

	accum := 0.0
	var reasons []string
	for _, p := range patterns {
		if p.ProcedureCode != "" && !procedureCodes[p.ProcedureCode] {
			continue
		}
		if p.DiagnosisCode != "" && !diagnosisCodes[p.DiagnosisCode] {
			continue
		}
		accum += p.Frequency * p.Confidence * 100
		reasons = append(reasons, fmt.Sprintf("matched pattern reason=%s confidence=%.2f", p.DenialReasonCode, p.Confidence))
	}

	return domain.FactorResult{Name: f.Name(), Score: capScore(int(accum + 0.5)), Weight: f.weight, Reasons: reasons}
}
