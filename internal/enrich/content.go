package enrich

import "training-enrichment/internal/domain/model"

// Built-in coaching content used when no generator is configured or the
// generator fails. Kept deliberately generic; discipline flavor comes from
// the coach type.

func builtinCues(coach model.CoachType, ex model.Exercise) []string {
	setup := ex.SetupPosition
	if setup == "" {
		setup = "standard setup"
	}
	cues := []string{"Starting position: " + setup}

	switch coach {
	case model.CoachForce:
		cues = append(cues,
			"Controlled eccentric phase",
			"Pause at the bottom if prescribed",
			"Explosive concentric phase",
		)
	case model.CoachEndurance:
		cues = append(cues,
			"Settle into the target zone early",
			"Relaxed upper body, steady cadence",
		)
	case model.CoachFunctional:
		cues = append(cues,
			"Brace before every rep",
			"Break sets before form degrades",
		)
	case model.CoachCalisthenics:
		cues = append(cues,
			"Active scapular engagement",
			"Full-body alignment",
			"Total control through the movement",
		)
	case model.CoachCompetitions:
		cues = append(cues,
			"Pace the station, not the rep",
			"Smooth transitions save more time than fast reps",
		)
	}
	return cues
}

func builtinMistakes() []string {
	return []string{
		"Compensating with other muscle groups",
		"Incomplete range of motion",
		"Rushing the tempo at the cost of quality",
	}
}

func progressionSuggestions(coach model.CoachType) *model.ProgressionSuggestion {
	p := &model.ProgressionSuggestion{
		Easier:    "Reduce load/intensity by 20%",
		Harder:    "Increase load/intensity by 10%",
		Variation: "Try a unilateral variant",
	}
	if coach == model.CoachCalisthenics {
		p.Easier = "Regress to the previous skill progression"
		p.Harder = "Add a pause or slow negative"
	}
	return p
}

func technicalBreakdown(coach model.CoachType, ex model.Exercise) *model.TechnicalBreakdown {
	breathing := "Exhale on effort, inhale on the return"
	if coach == model.CoachEndurance {
		breathing = "Rhythmic breathing matched to cadence"
	}
	return &model.TechnicalBreakdown{
		Setup:     "Optimal setup for " + ex.Name,
		Execution: "Key execution points under load",
		Breathing: breathing,
	}
}
