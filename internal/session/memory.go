package session

import (
	"context"
	"sync"
	"time"

	"github.com/eleven-am/aura-studio/internal/shared"
)

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	metrics  map[string]map[string]int64
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		metrics:  make(map[string]map[string]int64),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, shared.ErrNotFound
	}

	state := entry.state
	return &state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now

	s.sweep(now)
	s.sessions[state.ID] = memoryEntry{state: *state, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) IncrementMetric(ctx context.Context, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := metricsDate(s.now())
	counters, ok := s.metrics[date]
	if !ok {
		counters = make(map[string]int64)
		s.metrics[date] = counters
	}
	counters[field]++
	return nil
}

func (s *MemoryStore) GetMetrics(ctx context.Context, day time.Time) (*Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := metricsDate(day)
	m := &Metrics{Date: date}
	for field, v := range s.metrics[date] {
		m.set(field, v)
	}
	return m, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
