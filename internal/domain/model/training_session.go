package model

import "time"

// SessionStatus is the session-level enrichment projection. It is derived
// from the job state machine but stored on the session row so readers never
// have to join against the queue.
type SessionStatus string

const (
	// SessionFast is a cheaply generated session, enrichment not yet requested.
	SessionFast SessionStatus = "fast"
	// SessionEnriching means a job is queued or in flight for this session.
	SessionEnriching SessionStatus = "enriching"
	// SessionEnriched means the processor has written detailed content.
	SessionEnriched SessionStatus = "enriched"
	// SessionFull was generated with full detail originally; never queued.
	SessionFull SessionStatus = "full"
)

// ProgressionSuggestion offers easier/harder alternatives for one exercise.
type ProgressionSuggestion struct {
	Easier    string `json:"easier"`
	Harder    string `json:"harder"`
	Variation string `json:"variation"`
}

// TechnicalBreakdown decomposes an exercise into coaching phases.
type TechnicalBreakdown struct {
	Setup     string `json:"setup"`
	Execution string `json:"execution"`
	Breathing string `json:"breathing"`
}

// Exercise is one unit of a training session. The enrichment fields are nil
// on a fast session and filled in additively by the processor; a field that
// is already present is never overwritten.
type Exercise struct {
	Name          string `json:"name"`
	Sets          int    `json:"sets,omitempty"`
	Reps          string `json:"reps,omitempty"`
	Load          string `json:"load,omitempty"`
	RestSec       int    `json:"rest_sec,omitempty"`
	SetupPosition string `json:"setup_position,omitempty"`

	CoachingCues           []string               `json:"coaching_cues_detailed,omitempty"`
	CommonMistakes         []string               `json:"common_mistakes,omitempty"`
	ProgressionSuggestions *ProgressionSuggestion `json:"progression_suggestions,omitempty"`
	TechnicalBreakdown     *TechnicalBreakdown    `json:"technical_breakdown,omitempty"`
}

// Enriched reports whether every additive enrichment field is present.
func (e *Exercise) Enriched() bool {
	return len(e.CoachingCues) > 0 &&
		len(e.CommonMistakes) > 0 &&
		e.ProgressionSuggestions != nil &&
		e.TechnicalBreakdown != nil
}

// SessionAnalysis holds the coach-specific session-level blocks the processor
// attaches. Only the pair matching the session's coach type is populated.
type SessionAnalysis struct {
	// force
	VolumeAnalysis        *VolumeAnalysis        `json:"volume_analysis,omitempty"`
	IntensityDistribution *IntensityDistribution `json:"intensity_distribution,omitempty"`
	// endurance
	ZoneDistribution *ZoneDistribution `json:"zone_distribution,omitempty"`
	TSSBreakdown     *TSSBreakdown     `json:"tss_breakdown,omitempty"`
	// functional
	ModalBalance    *ModalBalance    `json:"modal_balance,omitempty"`
	ScalingGuidance *ScalingGuidance `json:"scaling_guidance,omitempty"`
	// calisthenics
	SkillProgressionPath *SkillProgressionPath `json:"skill_progression_path,omitempty"`
	PushPullRatio        *PushPullRatio        `json:"push_pull_ratio,omitempty"`
	// competitions
	StationTiming      *StationTiming      `json:"station_timing,omitempty"`
	TransitionStrategy *TransitionStrategy `json:"transition_strategy,omitempty"`
}

type VolumeAnalysis struct {
	TotalVolume       int            `json:"total_volume"`
	VolumeByMuscleGrp map[string]int `json:"volume_by_muscle_group"`
}

type IntensityDistribution struct {
	Light    int `json:"light"`
	Moderate int `json:"moderate"`
	Heavy    int `json:"heavy"`
}

type ZoneDistribution struct {
	Z1 int `json:"z1"`
	Z2 int `json:"z2"`
	Z3 int `json:"z3"`
	Z4 int `json:"z4"`
	Z5 int `json:"z5"`
}

type TSSBreakdown struct {
	Total   int   `json:"total"`
	ByBlock []int `json:"by_block"`
}

type ModalBalance struct {
	Gymnastics     int `json:"gymnastics"`
	Weightlifting  int `json:"weightlifting"`
	Monostructural int `json:"monostructural"`
}

type ScalingGuidance struct {
	RX          string `json:"rx"`
	Scaled      string `json:"scaled"`
	Foundations string `json:"foundations"`
}

type SkillProgressionPath struct {
	CurrentLevel string   `json:"current_level"`
	NextSteps    []string `json:"next_steps"`
}

type PushPullRatio struct {
	Push  int    `json:"push"`
	Pull  int    `json:"pull"`
	Ratio string `json:"ratio"`
}

type StationTiming struct {
	Stations  []StationSlot `json:"stations"`
	TotalTime int           `json:"total_time"`
}

type StationSlot struct {
	Name    string `json:"name"`
	Seconds int    `json:"seconds"`
}

type TransitionStrategy struct {
	Transitions []string `json:"transitions"`
	Tips        []string `json:"tips"`
}

// TrainingSession is the enrichment pipeline's view of a session. Creation
// happens elsewhere; this subsystem only reads it and writes enriched content
// plus the status projection.
type TrainingSession struct {
	ID               string
	UserID           string
	CoachType        CoachType
	Title            string
	EnrichmentStatus SessionStatus
	Exercises        []Exercise
	Analysis         SessionAnalysis
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewTrainingSession(id, userID string, coach CoachType, title string, status SessionStatus) *TrainingSession {
	now := time.Now()
	return &TrainingSession{
		ID:               id,
		UserID:           userID,
		CoachType:        coach,
		Title:            title,
		EnrichmentStatus: status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// EnrichmentStatusProjection is the UI-facing contract returned by the
// facade. QueuePosition and EstimatedWaitSec are only set while enriching.
type EnrichmentStatusProjection struct {
	Status           SessionStatus `json:"status"`
	QueuePosition    int           `json:"queuePosition,omitempty"`
	EstimatedWaitSec int           `json:"estimatedWaitTime,omitempty"`
}
