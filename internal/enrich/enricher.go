// Package enrich holds the coach-type enrichment routines the processor runs
// over a fast session. Every routine is additive: a field that is already
// present is left untouched, so re-running enrichment on partially enriched
// content (a retry after a write failure) is safe.
package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/adapter"
)

type Enricher struct {
	gen adapter.CoachContentGenerator // optional; nil means built-in content only
	log *zerolog.Logger
}

func New(gen adapter.CoachContentGenerator, log *zerolog.Logger) *Enricher {
	return &Enricher{gen: gen, log: log}
}

// Enrich augments every exercise in the session and attaches the
// coach-specific analysis blocks. It mutates the session in place and returns
// the number of exercises that received at least one new field.
func (e *Enricher) Enrich(ctx context.Context, s *model.TrainingSession, coach model.CoachType) int {
	touched := 0
	for i := range s.Exercises {
		if e.enrichExercise(ctx, coach, &s.Exercises[i]) {
			touched++
		}
	}
	e.attachAnalysis(s, coach)
	return touched
}

func (e *Enricher) enrichExercise(ctx context.Context, coach model.CoachType, ex *model.Exercise) bool {
	changed := false

	if len(ex.CoachingCues) == 0 {
		ex.CoachingCues = e.coachingCues(ctx, coach, *ex)
		changed = true
	}
	if len(ex.CommonMistakes) == 0 {
		ex.CommonMistakes = e.commonMistakes(ctx, coach, *ex)
		changed = true
	}
	if ex.ProgressionSuggestions == nil {
		ex.ProgressionSuggestions = progressionSuggestions(coach)
		changed = true
	}
	if ex.TechnicalBreakdown == nil {
		ex.TechnicalBreakdown = technicalBreakdown(coach, *ex)
		changed = true
	}
	return changed
}

func (e *Enricher) coachingCues(ctx context.Context, coach model.CoachType, ex model.Exercise) []string {
	if e.gen != nil {
		cues, err := e.gen.CoachingCues(ctx, coach, ex)
		if err == nil && len(cues) > 0 {
			return cues
		}
		if err != nil {
			e.log.Warn().Err(err).Str("exercise", ex.Name).Msg("cue generation failed, using built-in cues")
		}
	}
	return builtinCues(coach, ex)
}

func (e *Enricher) commonMistakes(ctx context.Context, coach model.CoachType, ex model.Exercise) []string {
	if e.gen != nil {
		mistakes, err := e.gen.CommonMistakes(ctx, coach, ex)
		if err == nil && len(mistakes) > 0 {
			return mistakes
		}
		if err != nil {
			e.log.Warn().Err(err).Str("exercise", ex.Name).Msg("mistake generation failed, using built-in list")
		}
	}
	return builtinMistakes()
}
