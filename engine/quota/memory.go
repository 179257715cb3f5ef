package quota

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Tracker.
type Memory struct {
	mu    sync.Mutex
	usage Usage
	limit int
	now   func() time.Time
}

// NewMemory creates an in-memory tracker. A non-positive limit uses
// DefaultDailyLimit and a nil clock uses time.Now.
func NewMemory(limit int, now func() time.Time) *Memory {
	limit, now = normalize(limit, now)
	return &Memory{limit: limit, now: now}
}

func (m *Memory) Remaining(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage.remaining(m.limit, dayOf(m.now())), nil
}

func (m *Memory) Record(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = m.usage.next(dayOf(m.now()))
	return nil
}

func (m *Memory) Reserve(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.usage.reserve(m.limit, dayOf(m.now()))
	if !ok {
		return ErrExhausted
	}
	m.usage = u
	return nil
}

func (m *Memory) Release(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage, _ = m.usage.release(dayOf(m.now()))
	return nil
}
