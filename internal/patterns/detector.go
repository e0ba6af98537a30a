// Package patterns implements the denial-pattern miner (C10): windowed
// aggregation of denial reason codes by payer, refined with the most
// common associated procedure/diagnosis code, upserted into DenialPattern
// rows (spec.md §4.8).
package patterns

import (
	"context"
	"fmt"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/services"
)

// Config tunes the miner's thresholds; defaults mirror spec.md §4.8.
type Config struct {
	Window         time.Duration
	MinFrequency   float64
	MinOccurrences int
}

// DefaultConfig returns the spec's default thresholds.
func DefaultConfig() Config {
	return Config{Window: 90 * 24 * time.Hour, MinFrequency: 0.05, MinOccurrences: 5}
}

// Detector mines DenialPatterns from episode/adjustment history.
type Detector struct {
	episodes services.EpisodeRepository
	patterns services.PatternRepository
	cfg      Config
	now      func() time.Time
}

// NewDetector builds a Detector. now defaults to time.Now when nil.
func NewDetector(episodes services.EpisodeRepository, patterns services.PatternRepository, cfg Config, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{episodes: episodes, patterns: patterns, cfg: cfg, now: now}
}

type reasonAgg struct {
	payerID        string
	reasonCode     string
	occurrences    int
	procedureTally map[string]int
	diagnosisTally map[string]int
}

// Run mines patterns for payerID (or every payer when payerID is "") over
// the configured window, upserting the resulting DenialPattern rows.
// Deterministic for a fixed snapshot of input; idempotent re-runs update
// occurrence_count and last_observed without duplicating rows.
func (d *Detector) Run(ctx context.Context, payerID string) ([]domain.DenialPattern, error) {
	windowEnd := d.now()
	windowStart := windowEnd.Add(-d.cfg.Window)

	inputs, err := d.episodes.ListPatternInputs(ctx, payerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern inputs: %w", err)
	}

	// Step 1/2: group by (payer, reason_code); tally occurrences and the
	// per-group procedure/diagnosis codes needed for step 4's refinement.
	aggs := make(map[string]*reasonAgg)
	payerTotals := make(map[string]int)
	var order []string

	for _, in := range inputs {
		payerTotals[in.PayerID]++
		key := in.PayerID + "|" + in.ReasonCode
		agg, ok := aggs[key]
		if !ok {
			agg = &reasonAgg{
				payerID:        in.PayerID,
				reasonCode:     in.ReasonCode,
				procedureTally: make(map[string]int),
				diagnosisTally: make(map[string]int),
			}
			aggs[key] = agg
			order = append(order, key)
		}
		agg.occurrences++
		for _, pc := range in.ProcedureCodes {
			if pc != "" {
				agg.procedureTally[pc]++
			}
		}
		for _, dc := range in.DiagnosisCodes {
			if dc != "" {
				agg.diagnosisTally[dc]++
			}
		}
	}

	var out []domain.DenialPattern
	for _, key := range order {
		agg := aggs[key]
		total := payerTotals[agg.payerID]
		if total == 0 {
			continue
		}
		frequency := float64(agg.occurrences) / float64(total)

		// Step 3: threshold gate.
		if frequency < d.cfg.MinFrequency || agg.occurrences < d.cfg.MinOccurrences {
			continue
		}

		// Step 4: refine with the dominant procedure/diagnosis code, only
		// when its conditional frequency within this reason group is >= 0.5.
		procCode := dominantCode(agg.procedureTally, agg.occurrences)
		diagCode := dominantCode(agg.diagnosisTally, agg.occurrences)

		pattern := domain.DenialPattern{
			PayerID:          agg.payerID,
			DenialReasonCode: agg.reasonCode,
			ProcedureCode:    procCode,
			DiagnosisCode:    diagCode,
			Frequency:        frequency,
			OccurrenceCount:  agg.occurrences,
			LastObserved:     windowEnd,
		}
		pattern.Confidence = domain.ComputeConfidence(pattern.OccurrenceCount)

		saved, err := d.patterns.Upsert(ctx, pattern)
		if err != nil {
			return out, fmt.Errorf("failed to upsert pattern %s: %w", key, err)
		}
		out = append(out, saved)
	}

	return out, nil
}

// dominantCode returns the most frequent code in tally, or "" if none
// reaches the >=0.5 conditional-frequency refinement bar.
func dominantCode(tally map[string]int, groupTotal int) string {
	best, bestCount := "", 0
	for code, count := range tally {
		if count > bestCount {
			best, bestCount = code, count
		}
	}
	if groupTotal == 0 || float64(bestCount)/float64(groupTotal) < 0.5 {
		return ""
	}
	return best
}
