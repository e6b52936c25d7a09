package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"training-enrichment/internal/domain"
	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/adapter"
	"training-enrichment/internal/domain/ports/repository"
	"training-enrichment/internal/enrich"
	"training-enrichment/internal/infra/metrics"
)

// Result describes one unit of completed enrichment work.
type Result struct {
	JobID             string
	SessionID         string
	CoachType         model.CoachType
	LatencyMs         int64
	ExercisesEnriched int
}

// EnrichmentProcessor performs at most one enrichment job per invocation.
// It is stateless between invocations and safe to run concurrently: the
// queue's claim is the only synchronization point.
type EnrichmentProcessor struct {
	queue    repository.EnrichmentQueueRepository
	sessions repository.TrainingSessionRepository
	enricher *enrich.Enricher
	feed     adapter.SessionFeed
	log      *zerolog.Logger
}

func NewEnrichmentProcessor(
	queue repository.EnrichmentQueueRepository,
	sessions repository.TrainingSessionRepository,
	enricher *enrich.Enricher,
	feed adapter.SessionFeed,
	log *zerolog.Logger,
) *EnrichmentProcessor {
	return &EnrichmentProcessor{
		queue:    queue,
		sessions: sessions,
		enricher: enricher,
		feed:     feed,
		log:      log,
	}
}

// ProcessOne claims and runs the highest-priority pending job. A nil Result
// with a nil error means the queue was empty, which is a normal outcome.
func (p *EnrichmentProcessor) ProcessOne(ctx context.Context) (*Result, error) {
	job, err := p.queue.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}

	p.log.Info().
		Str("job_id", job.ID).
		Str("session_id", job.SessionID).
		Str("coach_type", string(job.CoachType)).
		Int("priority", job.Priority).
		Int("attempts", job.Attempts).
		Msg("processing enrichment job")

	start := time.Now()
	enriched, err := p.handleJob(ctx, job)
	latency := time.Since(start)

	if err != nil {
		return nil, p.failJob(ctx, job, err, latency)
	}

	if err := p.queue.Complete(ctx, nil, job.ID); err != nil {
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("could not mark job completed")
	}
	metrics.IncEnrichmentJob("completed", string(job.CoachType))
	metrics.ObserveEnrichmentLatency(string(job.CoachType), float64(latency.Milliseconds()))
	p.publish(job.SessionID)

	p.log.Info().
		Str("job_id", job.ID).
		Str("session_id", job.SessionID).
		Dur("duration", latency).
		Int("exercises_enriched", enriched).
		Msg("enrichment job completed")

	return &Result{
		JobID:             job.ID,
		SessionID:         job.SessionID,
		CoachType:         job.CoachType,
		LatencyMs:         latency.Milliseconds(),
		ExercisesEnriched: enriched,
	}, nil
}

// handleJob loads the session, runs the coach routine, and persists the
// enriched content plus the status flip in one atomic update.
func (p *EnrichmentProcessor) handleJob(ctx context.Context, job *model.EnrichmentJob) (int, error) {
	session, err := p.sessions.FindByID(ctx, nil, job.SessionID)
	if err != nil {
		return 0, fmt.Errorf("session not found: %w", err)
	}

	enriched := p.enricher.Enrich(ctx, session, job.CoachType)

	if err := p.sessions.UpdateEnriched(ctx, nil, session); err != nil {
		return 0, fmt.Errorf("persist enriched session: %w", err)
	}
	return enriched, nil
}

// failJob routes an error through the retry-aware fail path. On terminal
// failure the session is reverted to fast so the UI never shows a stuck
// enriching badge and the session can be queued again.
func (p *EnrichmentProcessor) failJob(ctx context.Context, job *model.EnrichmentJob, cause error, latency time.Duration) error {
	p.log.Error().Err(cause).
		Str("job_id", job.ID).
		Str("session_id", job.SessionID).
		Str("coach_type", string(job.CoachType)).
		Int("attempts", job.Attempts).
		Msg("enrichment job failed")

	// Final status writes use a background context so cancellation of the
	// triggering request cannot strand the job in processing.
	terminal, err := p.queue.Fail(context.Background(), nil, job.ID, cause.Error())
	if err != nil {
		p.log.Error().Err(err).Str("job_id", job.ID).Msg("could not record job failure")
		return cause
	}

	if terminal {
		metrics.IncEnrichmentJob("failed", string(job.CoachType))
		if err := p.sessions.UpdateStatus(context.Background(), nil, job.SessionID, model.SessionFast); err != nil {
			p.log.Error().Err(err).Str("session_id", job.SessionID).Msg("could not revert session after terminal failure")
		}
		p.publish(job.SessionID)
	} else {
		metrics.IncEnrichmentJob("retried", string(job.CoachType))
	}
	metrics.ObserveEnrichmentLatency(string(job.CoachType), float64(latency.Milliseconds()))
	return cause
}

func (p *EnrichmentProcessor) publish(sessionID string) {
	if p.feed == nil {
		return
	}
	if err := p.feed.Publish(context.Background(), sessionID); err != nil {
		p.log.Warn().Err(err).Str("session_id", sessionID).Msg("could not publish session update")
	}
}
