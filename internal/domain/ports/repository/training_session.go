package repository

import (
	"context"

	"training-enrichment/internal/domain/model"
)

// TrainingSessionRepository is the pipeline's window on the session table.
// Sessions are created elsewhere; this subsystem reads them, writes enriched
// content, and moves the enrichment status projection.
type TrainingSessionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.TrainingSession) error

	FindByID(ctx context.Context, tx Tx, id string) (*model.TrainingSession, error)

	// ReadStatus is the cheap single-column read backing the status facade.
	ReadStatus(ctx context.Context, id string) (model.SessionStatus, error)

	// UpdateEnriched persists exercises, analysis and the enriched status in
	// one statement so concurrent readers see either the pre- or
	// post-enrichment content, never a half-written mix.
	UpdateEnriched(ctx context.Context, tx Tx, s *model.TrainingSession) error

	UpdateStatus(ctx context.Context, tx Tx, id string, status model.SessionStatus) error
}
