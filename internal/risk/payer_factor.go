package risk

import (
	"fmt"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
)

const payerDenialRateLookback = 90 * 24 * time.Hour
const payerDenialRateCacheTTL = 24 * time.Hour

// PayerRule is a single (predicate, risk_delta) entry from a payer's rule
// list (spec.md §4.9 "Payer factor"). Predicate receives the claim being
// scored and reports whether the rule applies.
type PayerRule struct {
	Name      string
	Predicate func(domain.Claim) bool
	Delta     int
}

// PayerFactor derives a base score from the payer's trailing 90-day
// denial rate, then applies any matching rule deltas.
type PayerFactor struct {
	weight float64
	rules  map[string][]PayerRule // keyed by PayerID; empty slice is fine
}

// NewPayerFactor builds a PayerFactor with the given weight and optional
// per-payer rule lists.
func NewPayerFactor(weight float64, rules map[string][]PayerRule) *PayerFactor {
	if rules == nil {
		rules = make(map[string][]PayerRule)
	}
	return &PayerFactor{weight: weight, rules: rules}
}

func (f *PayerFactor) Name() string    { return "payer" }
func (f *PayerFactor) Weight() float64 { return f.weight }

func (f *PayerFactor) Evaluate(claim domain.Claim, ec EvalContext) domain.FactorResult {
	now := time.Now
	if ec.Now != nil {
		now = ec.Now
	}

	cacheKey := fmt.Sprintf("payer:%s:denial_rate", claim.PayerID)
	var rate float64
	if cached, ok := ec.Cache.Get(cacheKey); ok {
		rate = cached.(float64)
	} else {
		since := now().Add(-payerDenialRateLookback)
		denied, total, err := ec.Episodes.PayerDenialStats(ec.Ctx, claim.PayerID, since)
		if err != nil || total == 0 {
			rate = 0
		} else {
			rate = float64(denied) / float64(total)
		}
		ec.Cache.Set(cacheKey, rate, payerDenialRateCacheTTL)
	}

	score := capScore(int(rate*100 + 0.5))
	reasons := []string{fmt.Sprintf("historical denial rate %.1f%%", rate*100)}

	for _, rule := range f.rules[claim.PayerID] {
		if rule.Predicate(claim) {
			score = capScore(score + rule.Delta)
			reasons = append(reasons, "matched payer rule: "+rule.Name)
		}
	}

	return domain.FactorResult{Name: f.Name(), Score: score, Weight: f.weight, Reasons: reasons}
}
