package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/clarity-health/claimrisk/internal/logging"
)

// RecurringJob is a periodic background task driven by a cron expression.
type RecurringJob interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler drives RecurringJobs on their cron schedules, skipping a tick
// if the previous run of the same job hasn't finished yet.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []RecurringJob
	locks  map[string]*sync.Mutex
	cancel context.CancelFunc
}

// NewScheduler builds an empty Scheduler. Jobs must be registered before
// Start().
func NewScheduler() *Scheduler {
	return &Scheduler{locks: make(map[string]*sync.Mutex)}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(j RecurringJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, j)
	s.locks[j.Name()] = &sync.Mutex{}
}

// Start begins executing every registered job on its schedule.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(cron.WithParser(parser))

	for _, j := range s.jobs {
		job := j
		lock := s.locks[job.Name()]
		_, err := s.cron.AddFunc(job.Schedule(), func() {
			if !lock.TryLock() {
				s.log().Warn("recurring job still running, skipping tick", zap.String("job", job.Name()))
				return
			}
			defer lock.Unlock()

			s.log().Debug("recurring job started", zap.String("job", job.Name()))
			if err := job.Run(ctx); err != nil {
				s.log().Error("recurring job failed", zap.String("job", job.Name()), zap.Error(err))
				return
			}
			s.log().Debug("recurring job completed", zap.String("job", job.Name()))
		})
		if err != nil {
			cancel()
			return fmt.Errorf("invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.log().Info("job scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs' context and waits for the current tick of
// each job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.log().Info("job scheduler stopped")
	}
}

func (s *Scheduler) log() *zap.Logger {
	if l := logging.GetLogger(); l != nil {
		return l
	}
	return zap.NewNop()
}
