package activity

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sessions keeps one Session per client, keyed by an opaque server-issued ID.
type Sessions struct {
	cfg     Config
	svc     Service
	logger  *slog.Logger
	idleTTL time.Duration
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	entries map[string]*sessionEntry
	wg      sync.WaitGroup
}

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// NewSessions builds an empty registry.
func NewSessions(cfg Config, svc Service, logger *slog.Logger) *Sessions {
	return &Sessions{
		cfg:     cfg,
		svc:     svc,
		logger:  logger.With("component", "activity.sessions"),
		idleTTL: cfg.SessionIdleTTL,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		entries: make(map[string]*sessionEntry),
	}
}

// Open returns the session for id. An empty or unknown id gets a fresh
// session under a newly issued ID; clients never choose their own IDs.
func (s *Sessions) Open(id string) (string, *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	if entry, ok := s.entries[id]; ok && id != "" {
		entry.lastSeen = now
		return id, entry.session
	}

	session := NewSession(s.cfg, s.svc, s.logger)
	session.wg = &s.wg
	id = s.newID()
	s.entries[id] = &sessionEntry{session: session, lastSeen: now}
	s.logger.Debug("session opened", "session_id", id, "sessions", len(s.entries))
	return id, session
}

// Lookup returns the session for id without creating one.
func (s *Sessions) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = now
	return entry.session, true
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Wait blocks until background loads of every session, including evicted ones, have finished.
func (s *Sessions) Wait() {
	s.wg.Wait()
}

// pruneLocked evicts sessions idle longer than idleTTL. Sessions still loading are kept.
func (s *Sessions) pruneLocked(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) <= s.idleTTL {
			continue
		}
		if entry.session.Snapshot().State == StateLoading {
			continue
		}
		delete(s.entries, id)
		s.logger.Debug("session evicted", "session_id", id)
	}
}
