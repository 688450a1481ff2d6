// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"sync"
	"time"

	"github.com/campusvote/ballotbooth/ballot"
	"github.com/campusvote/ballotbooth/models"
	"github.com/campusvote/ballotbooth/submission"
)

// Session is one voter's booth state, keyed by booth token. The embedded
// mutex guards the session's own fields - in particular the Draft and Sub
// pointers, which change over the session's life. The draft and
// coordinator carry their own locks.
type Session struct {
	sync.Mutex

	Token     string
	Election  *models.ElectionSnapshot
	Draft     *ballot.Draft
	Sub       *submission.Coordinator
	VoterHash string
	CreatedAt time.Time
}

// Manager tracks live booth sessions. Sessions expire after the TTL so an
// abandoned booth does not pin its draft forever.
type Manager struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*Session
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session under the given booth token. An existing
// session with the same token is replaced.
func (m *Manager) Create(token string, election *models.ElectionSnapshot, draft *ballot.Draft, voterHash string) *Session {
	s := &Session{
		Token:     token,
		Election:  election,
		Draft:     draft,
		VoterHash: voterHash,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = s
	return s
}

// Get returns the session for a booth token, or nil if the token is unknown
// or the session has expired. Expired sessions are dropped on access.
func (m *Manager) Get(token string) *Session {
	m.mu.RLock()
	s := m.sessions[token]
	m.mu.RUnlock()
	if s == nil {
		return nil
	}
	if m.ttl > 0 && time.Since(s.CreatedAt) > m.ttl {
		m.Delete(token)
		return nil
	}
	return s
}

func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Purge drops every expired session and reports how many were removed.
// Callers run this on whatever cadence suits them.
func (m *Manager) Purge() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for token, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
