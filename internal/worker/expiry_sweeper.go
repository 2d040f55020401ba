package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/foodbridge/internal/adapter/notifier"
	"github.com/polkiloo/foodbridge/internal/domain/model"
)

const sweepJob = "expiry_sweep"

// SweepFacade exposes the subset of application functionality required by the sweeper.
type SweepFacade interface {
	SweepExpired(ctx context.Context, limit int) ([]model.Event, error)
	NotifyEvent(ctx context.Context, event model.Event) error
}

// JobMetrics records sweep runs.
type JobMetrics interface {
	ObserveDuration(job string, d time.Duration)
	IncSuccess(job string)
	IncFailure(job string)
}

// ExpirySweeper periodically expires overdue donations and notifies their donors concurrently.
type ExpirySweeper struct {
	facade    SweepFacade
	interval  time.Duration
	batchSize int
	workers   int
	metrics   JobMetrics
	logger    *slog.Logger

	jobs   chan model.Event
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpirySweeper constructs the sweeper and its notification worker pool.
func NewExpirySweeper(facade SweepFacade, interval time.Duration, batchSize, workers int, metrics JobMetrics, logger *slog.Logger) *ExpirySweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ExpirySweeper{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		metrics:   metrics,
		logger:    logger,
		jobs:      make(chan model.Event, batchSize*workers),
	}
}

// Start launches background processing.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ExpirySweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep keeps expiring full batches until the backlog is drained.
func (s *ExpirySweeper) sweep(ctx context.Context) {
	for ctx.Err() == nil {
		started := time.Now()
		events, err := s.facade.SweepExpired(ctx, s.batchSize)
		s.observe(started, err)
		if err != nil {
			s.logger.Error("expiry sweep failed", slog.String("error", err.Error()))
			return
		}
		if len(events) > 0 {
			s.logger.Info("expired donations", slog.Int("count", len(events)))
		}
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case s.jobs <- event:
			}
		}
		if len(events) < s.batchSize {
			return
		}
	}
}

func (s *ExpirySweeper) observe(started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(sweepJob, time.Since(started))
	if err != nil {
		s.metrics.IncFailure(sweepJob)
		return
	}
	s.metrics.IncSuccess(sweepJob)
}

func (s *ExpirySweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handleEvent(ctx, event)
		}
	}
}

func (s *ExpirySweeper) handleEvent(ctx context.Context, event model.Event) {
	err := s.facade.NotifyEvent(ctx, event)
	if err == nil {
		return
	}
	var tooMany notifier.TooManyRequestsError
	if errors.As(err, &tooMany) {
		s.logger.Warn("notifier rate limited", slog.String("event_id", event.ID), slog.Duration("retry_after", tooMany.RetryAfter))
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(tooMany.RetryAfter):
			err = s.facade.NotifyEvent(ctx, event)
		}
		if err != nil {
			s.logger.Warn("expiry notification dropped", slog.String("event_id", event.ID), slog.String("error", err.Error()))
		}
		return
	}
	s.logger.Error("expiry notification failed", slog.String("event_id", event.ID), slog.String("error", err.Error()))
}
