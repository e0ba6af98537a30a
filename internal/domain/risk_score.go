package domain

import "time"

// RiskLevel is the deterministic bucket derived from OverallScore.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// DetermineRiskLevel derives the level from a 0-100 score per spec.md §3:
// <25 low, <50 medium, <75 high, else critical. A score landing exactly on
// a threshold resolves to the upper bucket (boundary behavior, spec.md §8).
func DetermineRiskLevel(score int) RiskLevel {
	switch {
	case score < 25:
		return RiskLevelLow
	case score < 50:
		return RiskLevelMedium
	case score < 75:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// FactorResult is the uniform shape every risk factor returns
// (spec.md §4.9, §9 "Polymorphism across factors").
type FactorResult struct {
	Name    string   `json:"name"`
	Score   int      `json:"score"`  // 0-100
	Weight  float64  `json:"weight"`
	Reasons []string `json:"reasons"`
}

// RiskScore is the persisted, versioned scoring result for one claim.
// Latest-per-claim (max CalculatedAt, tie-broken by ID) is canonical.
type RiskScore struct {
	ID            string         `json:"id"`
	ClaimID       string         `json:"claim_id"`
	CalculatedAt  time.Time      `json:"calculated_at"`
	OverallScore  int            `json:"overall_score"` // 0-100
	Level         RiskLevel      `json:"level"`
	Factors       []FactorResult `json:"factors"`
	Rationale     string         `json:"rationale,omitempty"`
}

// Validate enforces invariant 2 from spec.md §8.
func (r *RiskScore) Validate() error {
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return NewInvariantViolation("risk_score_range", "overall_score must be within [0,100]")
	}
	if r.Level != DetermineRiskLevel(r.OverallScore) {
		return NewInvariantViolation("risk_level_derivation", "level does not match overall_score threshold")
	}
	return nil
}
