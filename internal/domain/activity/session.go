package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session tracks the current city selection and the view it produced.
// Every transition replaces the whole State under one lock, so readers
// never see a half-applied load.
type Session struct {
	svc    Service
	policy StalePolicy
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu     sync.Mutex
	state  State
	latest uint64
	wg     *sync.WaitGroup
}

type loadTicket struct {
	seq  uint64
	id   string
	city string
}

// NewSession starts an idle session.
func NewSession(cfg Config, svc Service, logger *slog.Logger) *Session {
	policy := cfg.StalePolicy
	if policy == "" {
		policy = IgnoreStale
	}
	return &Session{
		svc:    svc,
		policy: policy,
		logger: logger.With("component", "activity.session"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		state:  State{State: StateIdle},
		wg:     &sync.WaitGroup{},
	}
}

// Snapshot returns the current state. Views are shared read-only.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select begins loading city in the background and returns the load ID.
func (s *Session) Select(ctx context.Context, city string) string {
	ticket := s.begin(city)
	loadCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		view, err := s.svc.View(loadCtx, ticket.city)
		s.finish(ticket, view, err)
	}()
	return ticket.id
}

// Load runs a selection to completion and returns the resulting state.
// The error is the load failure, if any, even when the completion was stale.
func (s *Session) Load(ctx context.Context, city string) (State, error) {
	ticket := s.begin(city)
	view, err := s.svc.View(ctx, city)
	s.finish(ticket, view, err)
	return s.Snapshot(), err
}

// Wait blocks until every background load started by Select has finished.
// Sessions created by a Sessions registry share its wait group.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) begin(city string) loadTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	ticket := loadTicket{seq: s.latest, id: s.newID(), city: city}
	next := s.state
	next.State = StateLoading
	next.ErrorMessage = ""
	next.Selection = city
	next.LoadID = ticket.id
	s.state = next
	s.logger.Debug("load started", "city", city, "load_id", ticket.id)
	return ticket
}

func (s *Session) finish(ticket loadTicket, view View, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policy == IgnoreStale && ticket.seq != s.latest {
		s.logger.Info("dropping stale load", "city", ticket.city, "load_id", ticket.id, "error", err)
		return
	}

	if err != nil {
		s.state = State{
			State:        StateError,
			ErrorMessage: "Error loading city data: " + err.Error(),
			LoadID:       ticket.id,
			View:         s.state.View,
			LoadedAt:     s.state.LoadedAt,
		}
		s.logger.Warn("load failed", "city", ticket.city, "load_id", ticket.id, "error", err)
		return
	}

	loadedAt := s.now().UTC()
	s.state = State{
		State:     StateLoaded,
		Selection: ticket.city,
		LoadID:    ticket.id,
		View:      &view,
		LoadedAt:  &loadedAt,
	}
	s.logger.Info("load applied", "city", ticket.city, "load_id", ticket.id)
}
