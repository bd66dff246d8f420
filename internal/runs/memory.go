package runs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Lllllllleong/researchpipeline/internal/models"
)

// Memory is an in-process Tracker for the CLI and tests.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]models.Run
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{runs: map[string]models.Run{}, now: time.Now}
}

func (m *Memory) Create(_ context.Context, run *models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[run.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, run.ID)
	}
	now := m.now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now
	m.runs[run.ID] = *run
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &r, nil
}

func (m *Memory) FindByIdempotencyKey(_ context.Context, key string) (*models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if key != "" {
		for _, r := range m.runs {
			if r.IdempotencyKey == key {
				return &r, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: idempotency key %q", ErrNotFound, key)
}

func (m *Memory) Update(_ context.Context, id string, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	u.apply(&r, m.now())
	m.runs[id] = r
	return nil
}
