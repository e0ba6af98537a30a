package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/clarity-health/claimrisk/internal/cache"
	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/services"
)

const riskScoreCacheTTL = 60 * time.Minute

// EventPublisher is satisfied by the push channel (C14); the scorer emits
// a risk event after every calculation (spec.md §4.10).
type EventPublisher interface {
	PublishRiskScoreCalculated(claimID string, score domain.RiskScore)
}

// Scorer composes the registered factors into a single weighted score
// and persists the result (C12).
type Scorer struct {
	factors    []Factor
	scores     services.RiskScoreRepository
	cache      *cache.Cache
	publisher  EventPublisher
}

// NewScorer builds a Scorer from a fixed factor list. Weights need not
// sum to exactly 1.0 at construction time — the caller is responsible
// for choosing sensible weights (spec.md §4.9 "Weights sum to 1.0").
func NewScorer(factors []Factor, scores services.RiskScoreRepository, c *cache.Cache, publisher EventPublisher) *Scorer {
	return &Scorer{factors: factors, scores: scores, cache: c, publisher: publisher}
}

// Score evaluates every registered factor against claim, combines them
// into an overall 0-100 score, persists a new RiskScore row, invalidates
// the cached score, and emits a risk event.
func (s *Scorer) Score(ec EvalContext, claim domain.Claim) (domain.RiskScore, error) {
	results := make([]domain.FactorResult, 0, len(s.factors))
	weighted := 0.0

	for _, factor := range s.factors {
		result := factor.Evaluate(claim, ec)
		results = append(results, result)
		if result.Weight > 0 {
			weighted += float64(result.Score) * result.Weight
		}
	}

	overall := capScore(int(weighted + 0.5))
	now := time.Now()
	if ec.Now != nil {
		now = ec.Now()
	}

	rs := domain.RiskScore{
		ClaimID:      claim.ID,
		CalculatedAt: now,
		OverallScore: overall,
		Level:        domain.DetermineRiskLevel(overall),
		Factors:      results,
		Rationale:    buildRationale(results),
	}
	if err := rs.Validate(); err != nil {
		return domain.RiskScore{}, err
	}

	saved, err := s.scores.Save(ec.Ctx, rs)
	if err != nil {
		return domain.RiskScore{}, fmt.Errorf("failed to persist risk score: %w", err)
	}

	s.cacheResult(claim.ID, saved)
	if s.publisher != nil {
		s.publisher.PublishRiskScoreCalculated(claim.ID, saved)
	}
	return saved, nil
}

// GetCached returns the cached risk score for a claim, if present and
// unexpired (spec.md §4.10: TTL 60 minutes).
func (s *Scorer) GetCached(claimID string) (domain.RiskScore, bool) {
	v, ok := s.cache.Get(fmt.Sprintf("risk_score:%s", claimID))
	if !ok {
		return domain.RiskScore{}, false
	}
	return v.(domain.RiskScore), true
}

func (s *Scorer) cacheResult(claimID string, rs domain.RiskScore) {
	s.cache.Set(fmt.Sprintf("risk_score:%s", claimID), rs, riskScoreCacheTTL)
}

// InvalidateCache drops the cached score for a claim, called whenever the
// claim itself is modified (spec.md §4.10).
func (s *Scorer) InvalidateCache(claimID string) {
	s.cache.Delete(fmt.Sprintf("risk_score:%s", claimID))
}

func buildRationale(results []domain.FactorResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s=%d(w=%.2f)", r.Name, r.Score, r.Weight)
	}
	return b.String()
}
