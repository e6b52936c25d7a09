package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"training-enrichment/internal/domain"
	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/repository"
)

var _ repository.EnrichmentQueueRepository = (*enrichmentQueueRepo)(nil)

type enrichmentQueueRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewEnrichmentQueueRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *enrichmentQueueRepo {
	return &enrichmentQueueRepo{pool: pool, tm: tm}
}

const jobColumns = `id, user_id, session_id, coach_type, status, priority,
attempts, max_attempts, error_message, created_at, started_at, completed_at`

func scanJob(row pgx.Row) (*model.EnrichmentJob, error) {
	var j model.EnrichmentJob
	var status, coach string
	err := row.Scan(
		&j.ID, &j.UserID, &j.SessionID, &coach, &status, &j.Priority,
		&j.Attempts, &j.MaxAttempts, &j.ErrorMessage, &j.CreatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Status = model.JobStatus(status)
	j.CoachType = model.CoachType(coach)
	return &j, nil
}

// Enqueue is idempotent per session: a conflict against the partial unique
// index on session_id (pending/processing rows only) inserts nothing and is
// reported through `inserted`, never as an error.
func (r *enrichmentQueueRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.EnrichmentJob) (bool, error) {
	const q = `
INSERT INTO training_enrichment_queue
  (id, user_id, session_id, coach_type, status, priority, attempts, max_attempts, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (session_id) WHERE status IN ('pending', 'processing') DO NOTHING;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.UserID, job.SessionID, string(job.CoachType), string(job.Status),
		job.Priority, job.Attempts, job.MaxAttempts, job.ErrorMessage, job.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClaimNext selects the lowest (priority, created_at) pending job under
// FOR UPDATE SKIP LOCKED and flips it to processing in the same transaction,
// so concurrent claimants never receive the same row.
func (r *enrichmentQueueRepo) ClaimNext(ctx context.Context) (*model.EnrichmentJob, error) {
	var job *model.EnrichmentJob

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetchQuery = `
SELECT ` + jobColumns + `
FROM training_enrichment_queue
WHERE status = 'pending'
ORDER BY priority, created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, fetchQuery)
		if err != nil {
			return err
		}
		fetched, err := scanJob(row)
		if err != nil {
			return err
		}

		const claimQuery = `
UPDATE training_enrichment_queue
SET status = 'processing', started_at = now(), attempts = attempts + 1
WHERE id = $1
RETURNING started_at, attempts;`

		row, err = pickRow(ctx, r.pool, tx, claimQuery, fetched.ID)
		if err != nil {
			return err
		}
		if err := row.Scan(&fetched.StartedAt, &fetched.Attempts); err != nil {
			return domain.ErrReadDatabaseRow
		}
		fetched.Status = model.JobStatusProcessing

		job = fetched
		return nil
	})

	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (r *enrichmentQueueRepo) Complete(ctx context.Context, tx repository.Tx, jobID string) error {
	const q = `
UPDATE training_enrichment_queue
SET status = 'completed', completed_at = now()
WHERE id = $1 AND status = 'processing';`

	tag, err := execSQL(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Fail re-queues the job while attempts remain (original created_at is kept,
// so retries keep their place behind equal-priority peers) and terminally
// fails it once the budget is exhausted. The attempt counter was already
// advanced at claim time.
func (r *enrichmentQueueRepo) Fail(ctx context.Context, tx repository.Tx, jobID, message string) (bool, error) {
	const q = `
UPDATE training_enrichment_queue
SET status        = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
    error_message = $2,
    started_at    = NULL,
    completed_at  = CASE WHEN attempts >= max_attempts THEN now() ELSE NULL END
WHERE id = $1 AND status = 'processing'
RETURNING status;`

	row, err := pickRow(ctx, r.pool, tx, q, jobID, message)
	if err != nil {
		return false, err
	}
	var status string
	if err := row.Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, domain.ErrReadDatabaseRow
	}
	return status == string(model.JobStatusFailed), nil
}

// Position counts pending jobs ahead of the target in claim order. The
// subquery form keeps the no-such-pending-job case a no-rows result rather
// than an aggregate over an empty join.
func (r *enrichmentQueueRepo) Position(ctx context.Context, jobID string) (int, error) {
	const q = `
SELECT (
  SELECT count(*)
  FROM training_enrichment_queue p
  WHERE p.status = 'pending'
    AND (p.priority, p.created_at) < (j.priority, j.created_at)
) + 1
FROM training_enrichment_queue j
WHERE j.id = $1 AND j.status = 'pending';`

	row, err := pickRow(ctx, r.pool, nil, q, jobID)
	if err != nil {
		return 0, err
	}
	var pos int
	if err := row.Scan(&pos); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrReadDatabaseRow
	}
	return pos, nil
}

func (r *enrichmentQueueRepo) FindActiveBySession(ctx context.Context, tx repository.Tx, sessionID string) (*model.EnrichmentJob, error) {
	const q = `
SELECT ` + jobColumns + `
FROM training_enrichment_queue
WHERE session_id = $1 AND status IN ('pending', 'processing');`

	row, err := pickRow(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *enrichmentQueueRepo) FindByID(ctx context.Context, tx repository.Tx, jobID string) (*model.EnrichmentJob, error) {
	const q = `
SELECT ` + jobColumns + `
FROM training_enrichment_queue
WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *enrichmentQueueRepo) Stats(ctx context.Context) (model.QueueStats, error) {
	const q = `
SELECT status, count(*)
FROM training_enrichment_queue
GROUP BY status;`

	var stats model.QueueStats
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, domain.ErrReadDatabaseRow
		}
		switch model.JobStatus(status) {
		case model.JobStatusPending:
			stats.Pending = n
		case model.JobStatusProcessing:
			stats.Processing = n
		case model.JobStatusCompleted:
			stats.Completed = n
		case model.JobStatusFailed:
			stats.Failed = n
		}
	}
	return stats, rows.Err()
}

// RequeueStale releases jobs whose processor invocation died mid-flight.
// The attempt spent by the dead claim stays counted against the budget.
func (r *enrichmentQueueRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	const q = `
UPDATE training_enrichment_queue
SET status = 'pending', started_at = NULL
WHERE status = 'processing' AND started_at < $1;`

	tag, err := execSQL(ctx, r.pool, nil, q, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
