package usecase

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

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// memQueueRepo is an in-memory EnrichmentQueueRepository that mirrors the
// store invariants: one active job per session, claim order by
// (priority, created_at), retry bookkeeping in Fail.
type memQueueRepo struct {
	mu         sync.Mutex
	jobs       map[string]*model.EnrichmentJob
	enqueueErr error
	findErr    error
}

func newMemQueueRepo() *memQueueRepo {
	return &memQueueRepo{jobs: make(map[string]*model.EnrichmentJob)}
}

func (m *memQueueRepo) Enqueue(ctx context.Context, tx repository.Tx, job *model.EnrichmentJob) (bool, error) {
	if m.enqueueErr != nil {
		return false, m.enqueueErr
	}
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
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.nextPendingLocked()
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
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.Status != model.JobStatusPending {
		return 0, domain.ErrNotFound
	}
	pos := 1
	for _, other := range m.jobs {
		if other.ID == j.ID || other.Status != model.JobStatusPending {
			continue
		}
		if other.Priority < j.Priority ||
			(other.Priority == j.Priority && other.CreatedAt.Before(j.CreatedAt)) {
			pos++
		}
	}
	return pos, nil
}

func (m *memQueueRepo) FindActiveBySession(ctx context.Context, tx repository.Tx, sessionID string) (*model.EnrichmentJob, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
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

func (m *memQueueRepo) nextPendingLocked() *model.EnrichmentJob {
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
	return next
}

// memSessionRepo is an in-memory TrainingSessionRepository.
type memSessionRepo struct {
	mu            sync.Mutex
	store         map[string]*model.TrainingSession
	readStatusErr error
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
	if m.readStatusErr != nil {
		return "", m.readStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s.EnrichmentStatus, nil
}

func (m *memSessionRepo) UpdateEnriched(ctx context.Context, tx repository.Tx, s *model.TrainingSession) error {
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

// fakeTrigger counts processor wake-ups.
type fakeTrigger struct {
	mu    sync.Mutex
	wakes int
}

func (f *fakeTrigger) Wake(ctx context.Context) {
	f.mu.Lock()
	f.wakes++
	f.mu.Unlock()
}

func (f *fakeTrigger) wakeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wakes
}

// fakeFeed delivers published events synchronously to active subscribers.
type fakeFeed struct {
	mu   sync.Mutex
	subs map[string][]func()
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[string][]func())}
}

func (f *fakeFeed) Publish(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	handlers := append([]func(){}, f.subs[sessionID]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h()
	}
	return nil
}

func (f *fakeFeed) Subscribe(ctx context.Context, sessionID string, onEvent func()) (func(), error) {
	f.mu.Lock()
	f.subs[sessionID] = append(f.subs[sessionID], onEvent)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, sessionID)
		f.mu.Unlock()
	}, nil
}
