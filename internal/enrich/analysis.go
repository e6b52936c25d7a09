package enrich

import (
	"fmt"
	"strconv"
	"strings"

	"training-enrichment/internal/domain/model"
)

// attachAnalysis adds the coach-specific session-level blocks. Like the
// per-exercise fields these are additive: a block that already exists is
// kept as-is.
func (e *Enricher) attachAnalysis(s *model.TrainingSession, coach model.CoachType) {
	a := &s.Analysis
	switch coach {
	case model.CoachForce:
		if a.VolumeAnalysis == nil {
			a.VolumeAnalysis = volumeAnalysis(s.Exercises)
		}
		if a.IntensityDistribution == nil {
			a.IntensityDistribution = intensityDistribution(s.Exercises)
		}
	case model.CoachEndurance:
		if a.ZoneDistribution == nil {
			a.ZoneDistribution = &model.ZoneDistribution{Z2: len(s.Exercises)}
		}
		if a.TSSBreakdown == nil {
			a.TSSBreakdown = tssBreakdown(s.Exercises)
		}
	case model.CoachFunctional:
		if a.ModalBalance == nil {
			a.ModalBalance = &model.ModalBalance{Gymnastics: len(s.Exercises)}
		}
		if a.ScalingGuidance == nil {
			a.ScalingGuidance = &model.ScalingGuidance{
				RX:          "As prescribed",
				Scaled:      "Intermediate",
				Foundations: "Beginner",
			}
		}
	case model.CoachCalisthenics:
		if a.SkillProgressionPath == nil {
			a.SkillProgressionPath = skillProgressionPath(s.Exercises)
		}
		if a.PushPullRatio == nil {
			a.PushPullRatio = pushPullRatio(s.Exercises)
		}
	case model.CoachCompetitions:
		if a.StationTiming == nil {
			a.StationTiming = stationTiming(s.Exercises)
		}
		if a.TransitionStrategy == nil {
			a.TransitionStrategy = transitionStrategy(s.Exercises)
		}
	}
}

func volumeAnalysis(exercises []model.Exercise) *model.VolumeAnalysis {
	v := &model.VolumeAnalysis{VolumeByMuscleGrp: map[string]int{}}
	for _, ex := range exercises {
		reps := parseReps(ex.Reps)
		v.TotalVolume += ex.Sets * reps
	}
	return v
}

func intensityDistribution(exercises []model.Exercise) *model.IntensityDistribution {
	d := &model.IntensityDistribution{}
	for _, ex := range exercises {
		switch {
		case strings.Contains(ex.Load, "%") && loadPercent(ex.Load) >= 80:
			d.Heavy++
		case ex.Load == "":
			d.Light++
		default:
			d.Moderate++
		}
	}
	return d
}

func tssBreakdown(exercises []model.Exercise) *model.TSSBreakdown {
	b := &model.TSSBreakdown{ByBlock: make([]int, 0, len(exercises))}
	for _, ex := range exercises {
		// Rough per-block stress score from prescribed work.
		score := ex.Sets * parseReps(ex.Reps)
		if score == 0 {
			score = 10
		}
		b.ByBlock = append(b.ByBlock, score)
		b.Total += score
	}
	return b
}

func skillProgressionPath(exercises []model.Exercise) *model.SkillProgressionPath {
	steps := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		steps = append(steps, "Master "+ex.Name+" with strict form")
	}
	return &model.SkillProgressionPath{CurrentLevel: "intermediate", NextSteps: steps}
}

func pushPullRatio(exercises []model.Exercise) *model.PushPullRatio {
	r := &model.PushPullRatio{}
	for _, ex := range exercises {
		name := strings.ToLower(ex.Name)
		switch {
		case strings.Contains(name, "pull") || strings.Contains(name, "row") || strings.Contains(name, "chin"):
			r.Pull++
		default:
			r.Push++
		}
	}
	r.Ratio = fmt.Sprintf("%d:%d", r.Push, r.Pull)
	return r
}

func stationTiming(exercises []model.Exercise) *model.StationTiming {
	t := &model.StationTiming{}
	for _, ex := range exercises {
		seconds := ex.RestSec + 60
		t.Stations = append(t.Stations, model.StationSlot{Name: ex.Name, Seconds: seconds})
		t.TotalTime += seconds
	}
	return t
}

func transitionStrategy(exercises []model.Exercise) *model.TransitionStrategy {
	s := &model.TransitionStrategy{
		Tips: []string{"Stage equipment before the start", "Walk, don't sprint, between stations"},
	}
	for i := 1; i < len(exercises); i++ {
		s.Transitions = append(s.Transitions, exercises[i-1].Name+" -> "+exercises[i].Name)
	}
	return s
}

// parseReps reads the leading integer of a reps prescription ("8", "8-10", "AMRAP").
func parseReps(reps string) int {
	digits := reps
	if i := strings.IndexFunc(reps, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		digits = reps[:i]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// loadPercent reads the integer before '%' in a load prescription ("80% 1RM").
func loadPercent(load string) int {
	i := strings.Index(load, "%")
	if i <= 0 {
		return 0
	}
	start := i
	for start > 0 && load[start-1] >= '0' && load[start-1] <= '9' {
		start--
	}
	n, err := strconv.Atoi(load[start:i])
	if err != nil {
		return 0
	}
	return n
}
