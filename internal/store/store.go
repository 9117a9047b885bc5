// Package store holds the authoritative in-memory state for collaborative
// sessions. It owns Session and Participant records exclusively; callers only
// ever see copies. All state is volatile and process-local.
package store

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"codeberg.org/pairpad/server/internal/ids"
)

// Store is the session registry. Every operation is atomic with respect to
// the session record it touches; reads never observe a partial update.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// creates a new session with an empty code buffer and no participants
func (s *Store) Create(language Language) (Snapshot, error) {
	sessionID, err := ids.NewSessionID()
	if err != nil {
		return Snapshot{}, err
	}

	now := time.Now()

	session := &Session{
		ID:           sessionID,
		Language:     language,
		Code:         "",
		Participants: make(map[string]Participant),
		CreatedAt:    now,
		LastActivity: now,
	}

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	return snapshotOf(session), nil
}

// retrieves a copy of a session by ID
func (s *Store) Get(sessionID string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return Snapshot{}, false
	}

	return snapshotOf(session), true
}

// returns the session summary; an absent shape for unknown ids, never an error
func (s *Store) Metadata(sessionID string) Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return Metadata{
			SessionID: sessionID,
			Language:  DefaultLanguage,
			UserCount: 0,
			Exists:    false,
		}
	}

	return Metadata{
		SessionID: session.ID,
		Language:  session.Language,
		UserCount: len(session.Participants),
		Exists:    true,
	}
}

// replaces the code buffer wholesale (last-writer-wins) and bumps activity
func (s *Store) UpdateCode(sessionID, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return false
	}

	session.Code = code
	session.LastActivity = time.Now()
	return true
}

// sets the session language and bumps activity
func (s *Store) UpdateLanguage(sessionID string, language Language) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return false
	}

	session.Language = language
	session.LastActivity = time.Now()
	return true
}

// inserts or overwrites a participant by id and bumps activity
func (s *Store) AddParticipant(sessionID string, participant Participant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return false
	}

	session.Participants[participant.ID] = participant
	session.LastActivity = time.Now()
	return true
}

// removes a participant by id; activity is bumped only on successful removal
func (s *Store) RemoveParticipant(sessionID, participantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return false
	}

	if _, present := session.Participants[participantID]; !present {
		return false
	}

	delete(session.Participants, participantID)
	session.LastActivity = time.Now()
	return true
}

// looks up a single participant within a session
func (s *Store) Participant(sessionID, participantID string) (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return Participant{}, false
	}

	participant, present := session.Participants[participantID]
	return participant, present
}

// returns all participants in a session; empty for unknown ids, not an error
func (s *Store) Participants(sessionID string) []Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return []Participant{}
	}

	return lo.Values(session.Participants)
}

// removes a session from the store
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return false
	}

	delete(s.sessions, sessionID)
	return true
}

// returns copies of all sessions (used by the cleanup service)
func (s *Store) ListAll() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.MapToSlice(s.sessions, func(_ string, session *Session) Snapshot {
		return snapshotOf(session)
	})
}

// updates last activity without other side effects; no-op for unknown ids
func (s *Store) Touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions[sessionID]; exists {
		session.LastActivity = time.Now()
	}
}

// returns the number of sessions currently held
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func snapshotOf(session *Session) Snapshot {
	return Snapshot{
		ID:               session.ID,
		Language:         session.Language,
		Code:             session.Code,
		ParticipantCount: len(session.Participants),
		CreatedAt:        session.CreatedAt,
		LastActivity:     session.LastActivity,
	}
}
