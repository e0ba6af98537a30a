package jobs

import (
	"context"
	"fmt"

	"github.com/clarity-health/claimrisk/internal/patterns"
	"github.com/clarity-health/claimrisk/internal/services"
)

// PatternSweepJob runs the denial-pattern miner for every known payer on
// a recurring schedule (spec.md §4.8).
type PatternSweepJob struct {
	payers   services.PayerRepository
	detector *patterns.Detector
	schedule string
}

// NewPatternSweepJob builds a PatternSweepJob. schedule is a 5-field cron
// expression; spec.md's default window is daily.
func NewPatternSweepJob(payers services.PayerRepository, detector *patterns.Detector, schedule string) *PatternSweepJob {
	if schedule == "" {
		schedule = "0 2 * * *" // 2am daily
	}
	return &PatternSweepJob{payers: payers, detector: detector, schedule: schedule}
}

func (j *PatternSweepJob) Name() string     { return "pattern_sweep" }
func (j *PatternSweepJob) Schedule() string { return j.schedule }

func (j *PatternSweepJob) Run(ctx context.Context) error {
	payers, err := j.payers.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payers for pattern sweep: %w", err)
	}
	for _, p := range payers {
		if _, err := j.detector.Run(ctx, p.ID); err != nil {
			return fmt.Errorf("pattern sweep failed for payer %s: %w", p.ID, err)
		}
	}
	return nil
}
