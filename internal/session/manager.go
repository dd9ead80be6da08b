package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"gagebu/internal/table"
)

// ErrSessionNotFound reports an unknown or expired session ID.
var ErrSessionNotFound = errors.New("session: not found")

// DefaultTTL is how long an idle session survives before Open prunes it.
const DefaultTTL = 2 * time.Hour

// Manager opens and tracks sessions against one backing store.
type Manager struct {
	store table.Store
	pub   Publisher
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store table.Store, pub Publisher) *Manager {
	return &Manager{
		store:    store,
		pub:      pub,
		ttl:      DefaultTTL,
		sessions: make(map[string]*Session),
	}
}

// Open loads a fresh session from the backing store.
func (m *Manager) Open(ctx context.Context) (*Session, error) {
	s := &Session{
		ID:    uuid.NewString(),
		store: m.store,
		pub:   m.pub,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.pruneLocked()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a tracked session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close discards a session's working copy.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// pruneLocked drops sessions idle past the TTL. Called with m.mu held.
func (m *Manager) pruneLocked() {
	cutoff := time.Now().Add(-m.ttl)
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := s.loadedAt.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(m.sessions, id)
		}
	}
}
