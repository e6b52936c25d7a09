package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"training-enrichment/internal/config"
	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/adapter"
	"training-enrichment/internal/domain/ports/repository"
)

// Compile-time check
var _ EnrichmentUseCase = (*enrichmentUC)(nil)

// EnrichmentUseCase is the only entry point application code uses to talk to
// the pipeline. Status reads never fail: on any read error the projection
// falls open to "full" so the UI is never stuck on an enriching indicator.
type EnrichmentUseCase interface {
	QueueForEnrichment(ctx context.Context, userID, sessionID string, coach model.CoachType, priority int) error
	GetEnrichmentStatus(ctx context.Context, sessionID string) model.EnrichmentStatusProjection
	SubscribeToEnrichment(ctx context.Context, sessionID string, onUpdate func(model.EnrichmentStatusProjection)) (func(), error)
	StartPolling(sessionID string, onChange func(model.EnrichmentStatusProjection), interval time.Duration)
	StopPolling(sessionID string)
	QueueStats(ctx context.Context) (model.QueueStats, error)

	// Close tears down every active poller. Each use-case instance owns its
	// timers, so tests can run isolated instances without leakage.
	Close()
}

type enrichmentUC struct {
	queue    repository.EnrichmentQueueRepository
	sessions repository.TrainingSessionRepository
	trigger  adapter.ProcessorTrigger
	feed     adapter.SessionFeed
	cfg      config.QueueConfig
	log      *zerolog.Logger

	mu      sync.Mutex
	pollers map[string]chan struct{}
}

func NewEnrichmentUseCase(
	queue repository.EnrichmentQueueRepository,
	sessions repository.TrainingSessionRepository,
	trigger adapter.ProcessorTrigger,
	feed adapter.SessionFeed,
	cfg config.QueueConfig,
	log *zerolog.Logger,
) *enrichmentUC {
	return &enrichmentUC{
		queue:    queue,
		sessions: sessions,
		trigger:  trigger,
		feed:     feed,
		cfg:      cfg,
		log:      log,
		pollers:  map[string]chan struct{}{},
	}
}

// QueueForEnrichment creates one pending job for the session and flips the
// session to enriching. Queueing an already-queued session is a no-op, not
// an error; only a fresh insert wakes the processor.
func (u *enrichmentUC) QueueForEnrichment(ctx context.Context, userID, sessionID string, coach model.CoachType, priority int) error {
	if _, err := model.ParseCoachType(string(coach)); err != nil {
		return err
	}
	if priority <= 0 {
		priority = u.cfg.DefaultPriority
	}

	job := model.NewEnrichmentJob(ulid.Make().String(), userID, sessionID, coach, priority)
	job.MaxAttempts = u.cfg.MaxAttempts

	inserted, err := u.queue.Enqueue(ctx, nil, job)
	if err != nil {
		u.log.Error().Err(err).
			Str("session_id", sessionID).
			Str("coach_type", string(coach)).
			Msg("could not queue enrichment")
		return err
	}
	if !inserted {
		u.log.Info().Str("session_id", sessionID).Msg("session already queued for enrichment")
		return nil
	}

	if err := u.sessions.UpdateStatus(ctx, nil, sessionID, model.SessionEnriching); err != nil {
		u.log.Error().Err(err).Str("session_id", sessionID).Msg("could not flip session to enriching")
	}

	u.log.Info().
		Str("session_id", sessionID).
		Str("coach_type", string(coach)).
		Int("priority", priority).
		Msg("session queued for enrichment")

	// Fire-and-forget wake; throughput does not depend on it because the
	// scheduler tick drains the queue regardless.
	u.trigger.Wake(ctx)
	return nil
}

// GetEnrichmentStatus reads the session's coarse status and, while enriching,
// decorates it with queue position and a fixed-estimate wait time.
func (u *enrichmentUC) GetEnrichmentStatus(ctx context.Context, sessionID string) model.EnrichmentStatusProjection {
	status, err := u.sessions.ReadStatus(ctx, sessionID)
	if err != nil {
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("could not read session status")
		return model.EnrichmentStatusProjection{Status: model.SessionFull}
	}
	if status == "" {
		status = model.SessionFull
	}

	projection := model.EnrichmentStatusProjection{Status: status}
	if status != model.SessionEnriching {
		return projection
	}

	job, err := u.queue.FindActiveBySession(ctx, nil, sessionID)
	if err != nil || job.Status != model.JobStatusPending {
		// In-flight or unreadable: report the coarse status alone.
		return projection
	}
	pos, err := u.queue.Position(ctx, job.ID)
	if err != nil {
		return projection
	}
	projection.QueuePosition = pos
	projection.EstimatedWaitSec = pos * int(u.cfg.AvgJobDuration.Seconds())
	return projection
}

// SubscribeToEnrichment delivers a fresh status projection on every session
// update event. The returned function tears the subscription down.
func (u *enrichmentUC) SubscribeToEnrichment(ctx context.Context, sessionID string, onUpdate func(model.EnrichmentStatusProjection)) (func(), error) {
	u.log.Info().Str("session_id", sessionID).Msg("subscribing to enrichment updates")
	return u.feed.Subscribe(ctx, sessionID, func() {
		onUpdate(u.GetEnrichmentStatus(context.Background(), sessionID))
	})
}

// StartPolling is the fallback delivery mechanism for environments without a
// live feed. It stops itself once the status settles on a terminal value and
// replaces any previous poller for the session.
func (u *enrichmentUC) StartPolling(sessionID string, onChange func(model.EnrichmentStatusProjection), interval time.Duration) {
	if interval <= 0 {
		interval = u.cfg.PollInterval
	}
	u.StopPolling(sessionID)

	stop := make(chan struct{})
	u.mu.Lock()
	u.pollers[sessionID] = stop
	u.mu.Unlock()

	u.log.Info().Str("session_id", sessionID).Dur("interval", interval).Msg("starting enrichment polling")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				status := u.GetEnrichmentStatus(context.Background(), sessionID)
				onChange(status)
				if status.Status == model.SessionEnriched || status.Status == model.SessionFast {
					u.stopPoller(sessionID, stop)
					return
				}
			}
		}
	}()
}

func (u *enrichmentUC) StopPolling(sessionID string) {
	u.mu.Lock()
	stop, ok := u.pollers[sessionID]
	if ok {
		delete(u.pollers, sessionID)
	}
	u.mu.Unlock()
	if ok {
		close(stop)
		u.log.Info().Str("session_id", sessionID).Msg("stopped enrichment polling")
	}
}

// stopPoller removes the poller entry only if it still belongs to this
// goroutine; a replacement started in the meantime is left alone.
func (u *enrichmentUC) stopPoller(sessionID string, stop chan struct{}) {
	u.mu.Lock()
	if current, ok := u.pollers[sessionID]; ok && current == stop {
		delete(u.pollers, sessionID)
	}
	u.mu.Unlock()
}

func (u *enrichmentUC) QueueStats(ctx context.Context) (model.QueueStats, error) {
	return u.queue.Stats(ctx)
}

func (u *enrichmentUC) Close() {
	u.mu.Lock()
	pollers := u.pollers
	u.pollers = map[string]chan struct{}{}
	u.mu.Unlock()
	for _, stop := range pollers {
		close(stop)
	}
}
