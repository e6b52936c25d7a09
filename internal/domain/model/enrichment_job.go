package model

import (
	"time"

	"training-enrichment/internal/domain"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition can happen for this status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type CoachType string

const (
	CoachForce        CoachType = "force"
	CoachEndurance    CoachType = "endurance"
	CoachFunctional   CoachType = "functional"
	CoachCalisthenics CoachType = "calisthenics"
	CoachCompetitions CoachType = "competitions"
)

// ParseCoachType validates a caller-supplied coach type string.
func ParseCoachType(s string) (CoachType, error) {
	switch CoachType(s) {
	case CoachForce, CoachEndurance, CoachFunctional, CoachCalisthenics, CoachCompetitions:
		return CoachType(s), nil
	default:
		return "", domain.ErrInvalidCoachType
	}
}

const (
	DefaultPriority    = 5
	DefaultMaxAttempts = 3
)

// EnrichmentJob is one durable unit of enrichment work. At most one job per
// session may be pending or processing at any time; the queue store enforces
// this with a partial unique index on session_id.
type EnrichmentJob struct {
	ID           string
	UserID       string
	SessionID    string
	CoachType    CoachType
	Status       JobStatus
	Priority     int // lower value = claimed first
	Attempts     int
	MaxAttempts  int
	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

func NewEnrichmentJob(id, userID, sessionID string, coach CoachType, priority int) *EnrichmentJob {
	if priority <= 0 {
		priority = DefaultPriority
	}
	return &EnrichmentJob{
		ID:          id,
		UserID:      userID,
		SessionID:   sessionID,
		CoachType:   coach,
		Status:      JobStatusPending,
		Priority:    priority,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   time.Now(),
	}
}

// Exhausted reports whether the job has burned through its attempt budget.
func (j *EnrichmentJob) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// QueueStats is a point-in-time count of jobs per status.
type QueueStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}
