package worker

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"training-enrichment/internal/domain"
	"training-enrichment/internal/domain/model"
	"training-enrichment/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// memQueueRepo mirrors the queue store's claim and retry semantics in memory.
type memQueueRepo struct {
	mu       sync.Mutex
	jobs     map[string]*model.EnrichmentJob
	claimErr error
}

func newMemQueueRepo() *memQueueRepo {
	return &memQueueRepo{jobs: make(map[string]*model.EnrichmentJob)}
}

func (m *memQueueRepo) add(job *model.EnrichmentJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
}

func (m *memQueueRepo) get(jobID string) model.EnrichmentJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.jobs[jobID]
}

func (m *memQueueRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.EnrichmentJob) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.SessionID == job.SessionID && !j.Status.Terminal() {
			return false, nil
		}
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return true, nil
}

func (m *memQueueRepo) ClaimNext(ctx context.Context) (*model.EnrichmentJob, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var next *model.EnrichmentJob
	for _, j := range m.jobs {
		if j.Status != model.JobStatusPending {
			continue
		}
		if next == nil ||
			j.Priority < next.Priority ||
			(j.Priority == next.Priority && j.CreatedAt.Before(next.CreatedAt)) {
			next = j
		}
	}
	if next == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	next.Status = model.JobStatusProcessing
	next.StartedAt = &now
	next.Attempts++
	cp := *next
	return &cp, nil
}

func (m *memQueueRepo) Complete(ctx context.Context, tx repository.Tx, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status != model.JobStatusProcessing {
		return domain.ErrNotFound
	}
	now := time.Now()
	j.Status = model.JobStatusCompleted
	j.CompletedAt = &now
	return nil
}

func (m *memQueueRepo) Fail(ctx context.Context, tx repository.Tx, jobID, message string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status != model.JobStatusProcessing {
		return false, domain.ErrNotFound
	}
	j.ErrorMessage = message
	j.StartedAt = nil
	if j.Attempts >= j.MaxAttempts {
		now := time.Now()
		j.Status = model.JobStatusFailed
		j.CompletedAt = &now
		return true, nil
	}
	j.Status = model.JobStatusPending
	return false, nil
}

func (m *memQueueRepo) Position(ctx context.Context, jobID string) (int, error) {
	return 1, nil
}

func (m *memQueueRepo) FindActiveBySession(ctx context.Context, tx repository.Tx, sessionID string) (*model.EnrichmentJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.SessionID == sessionID && !j.Status.Terminal() {
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memQueueRepo) FindByID(ctx context.Context, tx repository.Tx, jobID string) (*model.EnrichmentJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memQueueRepo) Stats(ctx context.Context) (model.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.QueueStats
	for _, j := range m.jobs {
		switch j.Status {
		case model.JobStatusPending:
			s.Pending++
		case model.JobStatusProcessing:
			s.Processing++
		case model.JobStatusCompleted:
			s.Completed++
		case model.JobStatusFailed:
			s.Failed++
		}
	}
	return s, nil
}

func (m *memQueueRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	n := 0
	for _, j := range m.jobs {
		if j.Status == model.JobStatusProcessing && j.StartedAt != nil && j.StartedAt.Before(cutoff) {
			j.Status = model.JobStatusPending
			j.StartedAt = nil
			n++
		}
	}
	return n, nil
}

// memSessionRepo is an in-memory TrainingSessionRepository with injectable
// write failures.
type memSessionRepo struct {
	mu                sync.Mutex
	store             map[string]*model.TrainingSession
	updateEnrichedErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[string]*model.TrainingSession)}
}

func (m *memSessionRepo) Save(ctx context.Context, tx repository.Tx, s *model.TrainingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TrainingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionRepo) ReadStatus(ctx context.Context, id string) (model.SessionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s.EnrichmentStatus, nil
}

func (m *memSessionRepo) UpdateEnriched(ctx context.Context, tx repository.Tx, s *model.TrainingSession) error {
	if m.updateEnrichedErr != nil {
		return m.updateEnrichedErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[s.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Exercises = s.Exercises
	cur.Analysis = s.Analysis
	cur.EnrichmentStatus = model.SessionEnriched
	s.EnrichmentStatus = model.SessionEnriched
	return nil
}

func (m *memSessionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.EnrichmentStatus = status
	return nil
}

// recordingFeed captures published session ids.
type recordingFeed struct {
	mu        sync.Mutex
	published []string
}

func (f *recordingFeed) Publish(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	f.published = append(f.published, sessionID)
	f.mu.Unlock()
	return nil
}

func (f *recordingFeed) Subscribe(ctx context.Context, sessionID string, onEvent func()) (func(), error) {
	return func() {}, nil
}

func (f *recordingFeed) publishedTo(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, id := range f.published {
		if id == sessionID {
			n++
		}
	}
	return n
}
