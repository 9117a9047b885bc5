package store

import (
	"sync"
	"time"

	"codeberg.org/pairpad/server/internal/logger"
)

// CleanupService handles automatic expiry of stale sessions. A session is
// evicted when its age exceeds sessionTTL, or when it has no participants and
// its age exceeds emptyTTL. Eviction is unconditional; in-flight events on an
// evicted session fail their store lookup and take the normal error path.
type CleanupService struct {
	store         *Store
	checkInterval time.Duration
	sessionTTL    time.Duration
	emptyTTL      time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// creates a new cleanup service
func NewCleanupService(store *Store, checkInterval, sessionTTL, emptyTTL time.Duration) *CleanupService {
	return &CleanupService{
		store:         store,
		checkInterval: checkInterval,
		sessionTTL:    sessionTTL,
		emptyTTL:      emptyTTL,
	}
}

// begins the periodic sweep; repeated calls while running are no-ops
func (s *CleanupService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.running = true
	s.stop = make(chan struct{})

	logger.Info("starting session cleanup service",
		"check_interval", s.checkInterval,
		"session_ttl", s.sessionTTL,
		"empty_session_ttl", s.emptyTTL,
	)

	go s.run(s.stop)
}

// stops the periodic sweep and releases its ticker
func (s *CleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	close(s.stop)

	logger.Info("session cleanup service stopped")
}

func (s *CleanupService) run(stop chan struct{}) {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-stop:
			return
		}
	}
}

// enumerates all sessions and evicts the ones meeting expiry policy
func (s *CleanupService) sweep() {
	now := time.Now()
	cleaned := 0

	for _, session := range s.store.ListAll() {
		age := now.Sub(session.CreatedAt)
		expired := age > s.sessionTTL
		emptyAndOld := session.ParticipantCount == 0 && age > s.emptyTTL

		if !expired && !emptyAndOld {
			continue
		}

		if s.store.Delete(session.ID) {
			cleaned++

			reason := "empty"
			if expired {
				reason = "expired"
			}

			logger.Info("cleaned up stale session",
				"session_id", session.ID,
				"reason", reason,
				"age", age,
			)
		}
	}

	if cleaned > 0 {
		logger.Info("session cleanup finished", "removed", cleaned)
	}
}
