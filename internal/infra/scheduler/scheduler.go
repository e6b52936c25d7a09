package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"training-enrichment/internal/domain/ports/repository"
	"training-enrichment/internal/infra/metrics"
	"training-enrichment/internal/infra/worker"
)

// Scheduler is the safety net behind the opportunistic wake trigger: every
// tick it requeues stale processing jobs and runs one processor invocation,
// so the queue drains even if no client ever fires a trigger.
type Scheduler struct {
	interval   time.Duration
	staleAfter time.Duration
	queue      repository.EnrichmentQueueRepository
	processor  *worker.EnrichmentProcessor
	log        *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(interval, staleAfter time.Duration, queue repository.EnrichmentQueueRepository, processor *worker.EnrichmentProcessor, log *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval:   interval,
		staleAfter: staleAfter,
		queue:      queue,
		processor:  processor,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start begins the scheduler loop in a background goroutine.
// Calling Start more than once has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(parentCtx)
	go s.loop()
}

func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("scheduler stopping")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
			s.tick(runCtx)
			cancel()
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.staleAfter > 0 {
		requeued, err := s.queue.RequeueStale(ctx, s.staleAfter)
		if err != nil {
			s.log.Error().Err(err).Msg("requeue stale jobs")
		} else if requeued > 0 {
			s.log.Warn().Int("requeued", requeued).Msg("requeued stale processing jobs")
		}
	}

	if stats, err := s.queue.Stats(ctx); err == nil {
		metrics.SetQueueDepth("pending", stats.Pending)
		metrics.SetQueueDepth("processing", stats.Processing)
		metrics.SetQueueDepth("completed", stats.Completed)
		metrics.SetQueueDepth("failed", stats.Failed)
	}

	if _, err := s.processor.ProcessOne(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled processor invocation failed")
	}
}
