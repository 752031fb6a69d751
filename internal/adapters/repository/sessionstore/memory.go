// Package sessionstore provides session persistence adapters:
// in-memory for tests and single-process use, SQLite and PostgreSQL
// for durable deployments.
package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/chatflow/chatflow/internal/core/session"
)

// MemoryStore keeps sessions in a map. Every session crossing the
// boundary is deep-copied so callers never share mutable state with
// the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*session.Session)}
}

func (s *MemoryStore) Save(_ context.Context, sess *session.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) ListByFlow(_ context.Context, flowID string) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*session.Session
	for _, sess := range s.sessions {
		if sess.FlowID == flowID {
			out = append(out, sess.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) ListDue(_ context.Context, before time.Time) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*session.Session
	for _, sess := range s.sessions {
		if sess.Status == session.StatusSuspended &&
			sess.Reason == session.ReasonTimer &&
			sess.ResumeAt != nil && !sess.ResumeAt.After(before) {
			out = append(out, sess.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return session.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}
