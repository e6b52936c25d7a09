package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"training-enrichment/internal/domain"
	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/repository"
)

var _ repository.TrainingSessionRepository = (*trainingSessionRepo)(nil)

type trainingSessionRepo struct {
	pool *pgxpool.Pool
}

func NewTrainingSessionRepo(pool *pgxpool.Pool) *trainingSessionRepo {
	return &trainingSessionRepo{pool: pool}
}

func (r *trainingSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.TrainingSession) error {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return err
	}
	analysis, err := json.Marshal(s.Analysis)
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now()

	const q = `
INSERT INTO training_sessions
  (id, user_id, coach_type, title, enrichment_status, exercises, analysis, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  enrichment_status = EXCLUDED.enrichment_status,
  exercises = EXCLUDED.exercises,
  analysis = EXCLUDED.analysis,
  updated_at = EXCLUDED.updated_at;`

	_, err = execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, string(s.CoachType), s.Title, string(s.EnrichmentStatus),
		exercises, analysis, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *trainingSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TrainingSession, error) {
	const q = `
SELECT id, user_id, coach_type, title, enrichment_status, exercises, analysis, created_at, updated_at
FROM training_sessions
WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	var s model.TrainingSession
	var coach, status string
	var exercises, analysis []byte
	err = row.Scan(&s.ID, &s.UserID, &coach, &s.Title, &status, &exercises, &analysis, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.CoachType = model.CoachType(coach)
	s.EnrichmentStatus = model.SessionStatus(status)
	if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(analysis, &s.Analysis); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *trainingSessionRepo) ReadStatus(ctx context.Context, id string) (model.SessionStatus, error) {
	const q = `SELECT enrichment_status FROM training_sessions WHERE id = $1;`

	var status string
	if err := r.pool.QueryRow(ctx, q, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrReadDatabaseRow
	}
	return model.SessionStatus(status), nil
}

// UpdateEnriched writes exercises, analysis and the status flip as one
// statement; a concurrent reader sees the old or the new content, never a mix.
func (r *trainingSessionRepo) UpdateEnriched(ctx context.Context, tx repository.Tx, s *model.TrainingSession) error {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return err
	}
	analysis, err := json.Marshal(s.Analysis)
	if err != nil {
		return err
	}
	s.EnrichmentStatus = model.SessionEnriched
	s.UpdatedAt = time.Now()

	const q = `
UPDATE training_sessions
SET exercises = $2, analysis = $3, enrichment_status = 'enriched', updated_at = $4
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, s.ID, exercises, analysis, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *trainingSessionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SessionStatus) error {
	const q = `
UPDATE training_sessions
SET enrichment_status = $2, updated_at = now()
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
