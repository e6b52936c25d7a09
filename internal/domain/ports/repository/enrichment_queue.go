package repository

import (
	"context"
	"time"

	"training-enrichment/internal/domain/model"
)

// EnrichmentQueueRepository is the durable backlog of enrichment work.
//
// The store enforces the one-active-job-per-session invariant: for any
// session_id at most one row may be pending or processing at a time.
type EnrichmentQueueRepository interface {
	// Enqueue inserts a pending job. A uniqueness conflict (the session is
	// already queued or in flight) is not an error; inserted reports whether
	// a fresh row was created so callers can skip the session flip and the
	// processor wake on a duplicate.
	Enqueue(ctx context.Context, tx Tx, job *model.EnrichmentJob) (inserted bool, err error)

	// ClaimNext atomically fetches the pending job with the lowest
	// (priority, created_at) and marks it processing, stamping started_at and
	// incrementing attempts. Two concurrent claimants never receive the same
	// job. Returns domain.ErrNotFound when the queue is empty.
	ClaimNext(ctx context.Context) (*model.EnrichmentJob, error)

	// Complete transitions processing -> completed and stamps completed_at.
	Complete(ctx context.Context, tx Tx, jobID string) error

	// Fail records a failed attempt. While attempts remain the job goes back
	// to pending (original created_at preserved); once exhausted it becomes
	// terminally failed with the message. terminal reports which path ran.
	Fail(ctx context.Context, tx Tx, jobID, message string) (terminal bool, err error)

	// Position returns the 1-based place of a pending job in claim order,
	// or domain.ErrNotFound when the job is missing or no longer pending.
	Position(ctx context.Context, jobID string) (int, error)

	// FindActiveBySession returns the pending or processing job for a
	// session, or domain.ErrNotFound.
	FindActiveBySession(ctx context.Context, tx Tx, sessionID string) (*model.EnrichmentJob, error)

	// FindByID is used by tests and operational tooling.
	FindByID(ctx context.Context, tx Tx, jobID string) (*model.EnrichmentJob, error)

	// Stats counts jobs per status.
	Stats(ctx context.Context) (model.QueueStats, error)

	// RequeueStale returns processing jobs whose claim is older than the
	// lease window back to pending, so a crashed processor invocation does
	// not strand its job forever. Returns the number of requeued jobs.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int, error)
}
