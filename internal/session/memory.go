package session

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/swiftbrowser/internal/domain"
)

type memoryEntry struct {
	session Session
	expires time.Time
}

// MemoryStore keeps sessions in process. Sessions are lost on restart and
// not shared between replicas; use the Redis store for that.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	sessions  map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// expired entries are dropped at most once per sweepInterval
const sweepInterval = time.Minute

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(entry.expires) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	s := entry.session
	s.Flashes = append([]domain.Flash(nil), s.Flashes...)
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	stored.Flashes = append([]domain.Flash(nil), s.Flashes...)
	stored.dirty = false
	stored.previousID = ""
	if ttl <= 0 {
		ttl = m.ttl
	}
	now := m.now()
	m.sessions[s.ID] = memoryEntry{session: stored, expires: now.Add(ttl)}
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
		m.lastSweep = now
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// sweep drops expired entries; called with mu held
func (m *MemoryStore) sweep(now time.Time) {
	for id, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, id)
		}
	}
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
