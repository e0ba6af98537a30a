// Package jobs implements the job dispatcher (C13): a bounded worker
// pool for EDI file ingestion tasks, with soft/hard deadlines and retry
// with exponential backoff, plus a robfig/cron-driven recurring sweep for
// the pattern detector (spec.md §4.8, §6).
package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clarity-health/claimrisk/internal/logging"
	"github.com/clarity-health/claimrisk/internal/metrics"
)

// DefaultWorkerCount is the pool size when none is specified.
const DefaultWorkerCount = 4

// Task is one unit of dispatchable work.
type Task struct {
	Name         string
	SoftDeadline time.Duration // logged as a warning if exceeded, not canceled
	HardDeadline time.Duration // context is canceled once exceeded
	MaxAttempts  int           // 0 means 1 (no retry)
	Run          func(ctx context.Context) error
}

// Pool runs Tasks across a fixed set of worker goroutines, draining a
// bounded inbox channel (spec.md §4.6 Design Notes / §6 job dispatcher).
type Pool struct {
	size   int
	inbox  chan Task
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool builds a Pool with the given size and inbox capacity. size<=0
// defaults to DefaultWorkerCount.
func NewPool(size, inboxCapacity int) *Pool {
	if size <= 0 {
		size = DefaultWorkerCount
	}
	if inboxCapacity <= 0 {
		inboxCapacity = size * 4
	}
	return &Pool{size: size, inbox: make(chan Task, inboxCapacity)}
}

// Start launches the worker goroutines. ctx cancellation stops the pool
// from accepting new work once drained.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.inbox:
			if !ok {
				return
			}
			metrics.JobQueueDepth.Set(float64(len(p.inbox)))
			p.execute(ctx, task)
		}
	}
}

func (p *Pool) execute(ctx context.Context, task Task) {
	attempts := task.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = p.runOnce(ctx, task)
		if lastErr == nil {
			return
		}
		p.log().Warn("task attempt failed",
			zap.String("task", task.Name), zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt < attempts {
			time.Sleep(backoff(attempt))
		}
	}
	p.log().Error("task failed permanently", zap.String("task", task.Name), zap.Error(lastErr))
}

func (p *Pool) runOnce(ctx context.Context, task Task) error {
	runCtx := ctx
	var cancel context.CancelFunc
	if task.HardDeadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, task.HardDeadline)
		defer cancel()
	}

	done := make(chan error, 1)
	start := time.Now()
	go func() { done <- task.Run(runCtx) }()

	if task.SoftDeadline > 0 {
		timer := time.NewTimer(task.SoftDeadline)
		defer timer.Stop()
		select {
		case err := <-done:
			return err
		case <-timer.C:
			p.log().Warn("task exceeded soft deadline",
				zap.String("task", task.Name), zap.Duration("soft_deadline", task.SoftDeadline))
			return <-done
		}
	}

	err := <-done
	p.log().Debug("task finished", zap.String("task", task.Name), zap.Duration("elapsed", time.Since(start)))
	return err
}

// Submit enqueues task. It blocks if the inbox is full.
func (p *Pool) Submit(task Task) {
	p.inbox <- task
	metrics.JobQueueDepth.Set(float64(len(p.inbox)))
}

// Close stops accepting new tasks and waits for in-flight work to drain.
func (p *Pool) Close() {
	close(p.inbox)
	p.wg.Wait()
}

// backoff returns an exponential delay capped at 30s: 1s, 2s, 4s, 8s...
func backoff(attempt int) time.Duration {
	d := time.Second << uint(attempt-1)
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

func (p *Pool) log() *zap.Logger {
	if l := logging.GetLogger(); l != nil {
		return l
	}
	return zap.NewNop()
}
