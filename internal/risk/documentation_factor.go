package risk

import "github.com/clarity-health/claimrisk/internal/domain"

// DocumentationFactor penalizes claims missing the fields adjudication
// depends on (spec.md §4.9 "Documentation factor").
type DocumentationFactor struct {
	weight float64
}

// NewDocumentationFactor builds a DocumentationFactor with the given weight.
func NewDocumentationFactor(weight float64) *DocumentationFactor {
	return &DocumentationFactor{weight: weight}
}

func (f *DocumentationFactor) Name() string    { return "documentation" }
func (f *DocumentationFactor) Weight() float64 { return f.weight }

func (f *DocumentationFactor) Evaluate(claim domain.Claim, ec EvalContext) domain.FactorResult {
	score := 0
	var reasons []string

	if claim.PrincipalDiagnosis() == nil {
		score += 40
		reasons = append(reasons, "missing principal diagnosis")
	}
	if claim.ProviderID == "" {
		score += 30
		reasons = append(reasons, "missing billing provider linkage (no NPI resolved)")
	}
	if claim.PatientControlNumber == "" {
		score += 20
		reasons = append(reasons, "missing subscriber reference")
	}
	if claim.ServiceDateStart.IsZero() {
		score += 20
		reasons = append(reasons, "missing service date")
	}
	if w := claim.CheckChargeInvariant(); w != nil {
		score += 20
		reasons = append(reasons, w.Message)
	}

	return domain.FactorResult{Name: f.Name(), Score: capScore(score), Weight: f.weight, Reasons: reasons}
}
