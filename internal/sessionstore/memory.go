// Package sessionstore holds the SessionRepository implementations.
package sessionstore

import (
	"context"
	"sync"

	"promptagent/internal/domain"
)

// Memory keeps sessions in process. State is lost on restart.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]*domain.Session)}
}

func (m *Memory) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) Put(_ context.Context, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return errMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *Memory) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *Memory) Update(_ context.Context, id string, fn func(*domain.Session) (*domain.Session, error)) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[id]
	if !ok {
		cur = domain.NewSession(id)
	}
	next, err := fn(cur.Clone())
	if err != nil {
		return nil, err
	}
	next.ID = id
	m.sessions[id] = next.Clone()
	return next, nil
}

var (
	_ domain.SessionRepository = (*Memory)(nil)
	_ domain.SessionUpdater    = (*Memory)(nil)
)
