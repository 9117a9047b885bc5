package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSessionTTL = 1 * time.Hour
	testEmptyTTL   = 5 * time.Minute
)

func newTestCleanup(s *Store) *CleanupService {
	return NewCleanupService(s, 10*time.Minute, testSessionTTL, testEmptyTTL)
}

// backdates a session's creation time for age-based tests
func backdate(t *testing.T, s *Store, sessionID string, age time.Duration) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[sessionID]
	require.True(t, exists)
	session.CreatedAt = session.CreatedAt.Add(-age)
}

func TestSweepEvictsOldEmptySession(t *testing.T) {
	s := New()
	cleanup := newTestCleanup(s)

	session, err := s.Create(LanguagePython)
	require.NoError(t, err)

	backdate(t, s, session.ID, 6*time.Minute)

	cleanup.sweep()

	_, exists := s.Get(session.ID)
	assert.False(t, exists)
}

func TestSweepKeepsRecentEmptySession(t *testing.T) {
	s := New()
	cleanup := newTestCleanup(s)

	session, err := s.Create(LanguagePython)
	require.NoError(t, err)

	backdate(t, s, session.ID, 4*time.Minute)

	cleanup.sweep()

	_, exists := s.Get(session.ID)
	assert.True(t, exists)
}

func TestSweepKeepsActiveSessionUnderTTL(t *testing.T) {
	s := New()
	cleanup := newTestCleanup(s)

	session, err := s.Create(LanguageGo)
	require.NoError(t, err)

	s.AddParticipant(session.ID, Participant{ID: "p1", Username: "Ada", ClientID: "c1"})
	backdate(t, s, session.ID, 50*time.Minute)

	// survives any number of sweep runs
	for range 5 {
		cleanup.sweep()
	}

	_, exists := s.Get(session.ID)
	assert.True(t, exists)
}

func TestSweepEvictsExpiredSessionWithParticipants(t *testing.T) {
	s := New()
	cleanup := newTestCleanup(s)

	session, err := s.Create(LanguageGo)
	require.NoError(t, err)

	s.AddParticipant(session.ID, Participant{ID: "p1", Username: "Ada", ClientID: "c1"})
	backdate(t, s, session.ID, 61*time.Minute)

	cleanup.sweep()

	_, exists := s.Get(session.ID)
	assert.False(t, exists)
}

func TestSweepOnlyRemovesExpired(t *testing.T) {
	s := New()
	cleanup := newTestCleanup(s)

	stale, err := s.Create(LanguageGo)
	require.NoError(t, err)
	backdate(t, s, stale.ID, 2*time.Hour)

	fresh, err := s.Create(LanguageGo)
	require.NoError(t, err)

	cleanup.sweep()

	_, exists := s.Get(stale.ID)
	assert.False(t, exists)

	_, exists = s.Get(fresh.ID)
	assert.True(t, exists)
}

func TestCleanupServiceStartIsIdempotent(t *testing.T) {
	s := New()
	cleanup := NewCleanupService(s, 10*time.Millisecond, testSessionTTL, testEmptyTTL)

	cleanup.Start()
	cleanup.Start() // second start is a no-op
	defer cleanup.Stop()

	session, err := s.Create(LanguagePython)
	require.NoError(t, err)
	backdate(t, s, session.ID, 6*time.Minute)

	// the periodic trigger evicts without any explicit sweep call
	assert.Eventually(t, func() bool {
		_, exists := s.Get(session.ID)
		return !exists
	}, time.Second, 5*time.Millisecond)
}

func TestCleanupServiceStop(t *testing.T) {
	s := New()
	cleanup := NewCleanupService(s, 10*time.Millisecond, testSessionTTL, testEmptyTTL)

	cleanup.Start()
	cleanup.Stop()
	cleanup.Stop() // repeated stop is safe

	// no further scheduled run fires after stop
	session, err := s.Create(LanguagePython)
	require.NoError(t, err)
	backdate(t, s, session.ID, 6*time.Minute)

	time.Sleep(50 * time.Millisecond)

	_, exists := s.Get(session.ID)
	assert.True(t, exists)

	// restarting after stop works
	cleanup.Start()
	defer cleanup.Stop()

	assert.Eventually(t, func() bool {
		_, exists := s.Get(session.ID)
		return !exists
	}, time.Second, 5*time.Millisecond)
}
