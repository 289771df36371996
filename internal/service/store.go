package service

import (
	"errors"
	"sync"

	"ohms_lab/internal/lab"
)

// ErrSessionNotFound is returned for ids with no live session.
var ErrSessionNotFound = errors.New("session not found")

// sessionStore maps session ids to live sessions.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*lab.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*lab.Session)}
}

func (s *sessionStore) put(sess *lab.Session) {
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
}

func (s *sessionStore) get(id string) (*lab.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// remove deletes and returns the session, or nil if it was already gone.
func (s *sessionStore) remove(id string) *lab.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	return sess
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// all returns a copy so callers can iterate without holding the lock.
func (s *sessionStore) all() []*lab.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*lab.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
