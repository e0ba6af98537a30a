package risk

import "github.com/clarity-health/claimrisk/internal/domain"

// MLFactor wraps a pluggable Predictor. Feature extraction and model
// training are out of scope (spec.md §4.9 "ML factor"); this factor only
// implements the contract and its no-model fallback.
type MLFactor struct {
	weight    float64
	features  func(domain.Claim) map[string]float64
}

// NewMLFactor builds an MLFactor with the given weight and feature
// extraction function. featureFn may be nil if no model is configured.
func NewMLFactor(weight float64, featureFn func(domain.Claim) map[string]float64) *MLFactor {
	return &MLFactor{weight: weight, features: featureFn}
}

func (f *MLFactor) Name() string    { return "ml" }
func (f *MLFactor) Weight() float64 { return f.weight }

func (f *MLFactor) Evaluate(claim domain.Claim, ec EvalContext) domain.FactorResult {
	if ec.Predictor == nil || f.features == nil {
		return domain.FactorResult{Name: f.Name(), Score: 50, Weight: 0, Reasons: []string{"no model"}}
	}

	probability, err := ec.Predictor.Predict(f.features(claim))
	if err != nil {
		return domain.FactorResult{Name: f.Name(), Score: 50, Weight: 0, Reasons: []string{"model prediction failed: " + err.Error()}}
	}

	return domain.FactorResult{
		Name:    f.Name(),
		Score:   capScore(int(probability*100 + 0.5)),
		Weight:  f.weight,
		Reasons: []string{"model prediction"},
	}
}
