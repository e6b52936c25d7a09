package ai

import (
	"context"

	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/adapter"
)

var _ adapter.CoachContentGenerator = (*NoopGenerator)(nil)

// NoopGenerator produces nothing, which makes the enricher fall back to its
// built-in content. Used in dev mode and in tests.
type NoopGenerator struct{}

func NewNoopGenerator() *NoopGenerator { return &NoopGenerator{} }

func (n *NoopGenerator) CoachingCues(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error) {
	return nil, nil
}

func (n *NoopGenerator) CommonMistakes(ctx context.Context, coach model.CoachType, ex model.Exercise) ([]string, error) {
	return nil, nil
}
