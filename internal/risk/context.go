// Package risk implements the weighted multi-factor denial-risk scorer
// (C11 factors, C12 scorer). Each factor is a small pure-ish struct
// following the teacher's riskCalculator pattern of one concrete type
// holding a group of helper methods, generalized here to a uniform
// Factor interface so the scorer can iterate a slice instead of calling
// named methods one by one.
package risk

import (
	"context"
	"time"

	"github.com/clarity-health/claimrisk/internal/cache"
	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/services"
)

// EvalContext carries the read handles and cache every factor may need.
// Factors never write; only the Scorer persists and invalidates.
type EvalContext struct {
	Ctx         context.Context
	Claims      services.ClaimRepository
	Episodes    services.EpisodeRepository
	Patterns    services.PatternRepository
	Cache       *cache.Cache
	Predictor   Predictor
	Now         func() time.Time
}

// Predictor is the pluggable ML contract from spec.md §4.9: feature
// extraction and model training are out of scope, only this interface is.
type Predictor interface {
	Predict(features map[string]float64) (probability float64, err error)
}

// Factor is the uniform shape every risk factor satisfies (spec.md §4.9,
// §9 "Polymorphism across factors").
type Factor interface {
	Name() string
	Weight() float64
	Evaluate(claim domain.Claim, ec EvalContext) domain.FactorResult
}

func capScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
