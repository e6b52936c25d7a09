package adapter

import (
	"context"

	"training-enrichment/internal/domain/model"
)

// CoachContentGenerator produces the expensive, discipline-specific coaching
// text the processor folds into a session. Implementations may call an LLM;
// the enricher falls back to its built-in cues when generation fails, so an
// adapter error never fails the job.
type CoachContentGenerator interface {
	// CoachingCues returns detailed execution cues for one exercise.
	CoachingCues(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error)

	// CommonMistakes returns the mistakes a coach would watch for.
	CommonMistakes(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error)
}
