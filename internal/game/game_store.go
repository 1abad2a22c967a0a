package game

import (
	"github.com/google/uuid"
)

// SessionStore indexes live match sessions. Like every store in this package it
// is owned by the dispatch loop and takes no locks.
type SessionStore struct {
	sessions map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (s *SessionStore) Add(sess *Session) {
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionStore) Delete(id uuid.UUID) {
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int { return len(s.sessions) }

// FindByParticipant returns every session in which id holds a human seat.
func (s *SessionStore) FindByParticipant(id uuid.UUID) []*Session {
	var out []*Session
	for _, sess := range s.sessions {
		if _, ok := sess.seatOf(id); ok {
			out = append(out, sess)
		}
	}
	return out
}

// ParkourStore indexes live parkour sessions.
type ParkourStore struct {
	sessions map[uuid.UUID]*ParkourSession
}

func NewParkourStore() *ParkourStore {
	return &ParkourStore{
		sessions: make(map[uuid.UUID]*ParkourSession),
	}
}

func (s *ParkourStore) Add(p *ParkourSession) {
	s.sessions[p.ID] = p
}

func (s *ParkourStore) Get(id uuid.UUID) (*ParkourSession, bool) {
	p, ok := s.sessions[id]
	return p, ok
}

func (s *ParkourStore) Delete(id uuid.UUID) {
	delete(s.sessions, id)
}

func (s *ParkourStore) Len() int { return len(s.sessions) }

// FindByParticipant returns the parkour sessions id is a member of.
func (s *ParkourStore) FindByParticipant(id uuid.UUID) []*ParkourSession {
	var out []*ParkourSession
	for _, p := range s.sessions {
		if p.member(id) >= 0 {
			out = append(out, p)
		}
	}
	return out
}
