package risk

import (
	"fmt"

	"github.com/clarity-health/claimrisk/internal/domain"
)

// ModifierRule says a given procedure code requires at least one of a set
// of modifiers to be present on the line (spec.md §4.9 "Coding factor").
type ModifierRule struct {
	ProcedureCode string
	Required      []string
}

// CodingFactor penalizes invalid or inconsistent coding on a claim.
type CodingFactor struct {
	weight        float64
	modifierRules map[string]ModifierRule
}

// NewCodingFactor builds a CodingFactor with the given weight and
// modifier requirement rules, keyed by procedure code.
func NewCodingFactor(weight float64, modifierRules []ModifierRule) *CodingFactor {
	m := make(map[string]ModifierRule, len(modifierRules))
	for _, r := range modifierRules {
		m[r.ProcedureCode] = r
	}
	return &CodingFactor{weight: weight, modifierRules: m}
}

func (f *CodingFactor) Name() string    { return "coding" }
func (f *CodingFactor) Weight() float64 { return f.weight }

func (f *CodingFactor) Evaluate(claim domain.Claim, ec EvalContext) domain.FactorResult {
	score := 0
	var reasons []string

	invalidProcCount, invalidDiagCount, missingModCount, unitMismatchCount := 0, 0, 0, 0

	for _, line := range claim.Lines {
		if !line.ProcedureCodeValid {
			invalidProcCount++
		}
		if rule, ok := f.modifierRules[line.ProcedureCode]; ok {
			if !hasAnyModifier(line.Modifiers, rule.Required) {
				missingModCount++
			}
		}
		if line.Units <= 0 {
			unitMismatchCount++
		}
	}
	for _, diag := range claim.Diagnoses {
		if !diag.IsValid {
			invalidDiagCount++
		}
	}

	if invalidProcCount > 0 {
		add := min(invalidProcCount*25, 50)
		score += add
		reasons = append(reasons, fmt.Sprintf("%d invalid procedure code(s)", invalidProcCount))
	}
	if invalidDiagCount > 0 {
		add := min(invalidDiagCount*15, 30)
		score += add
		reasons = append(reasons, fmt.Sprintf("%d invalid diagnosis code(s)", invalidDiagCount))
	}
	if missingModCount > 0 {
		score += missingModCount * 10
		reasons = append(reasons, fmt.Sprintf("%d line(s) missing a required modifier", missingModCount))
	}
	if unitMismatchCount > 0 {
		score += 10
		reasons = append(reasons, "unit count inconsistent with procedure type")
	}

	return domain.FactorResult{Name: f.Name(), Score: capScore(score), Weight: f.weight, Reasons: reasons}
}

func hasAnyModifier(have []string, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
