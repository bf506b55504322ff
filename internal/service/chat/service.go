package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/metrics"
	"github.com/medassist/medchat/internal/model/assistant"
	"github.com/medassist/medchat/internal/model/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

var ErrSessionNotFound = errors.New("session not found")

// Session identifies one page load of the web surface.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type entry struct {
	session    Session
	controller *Controller
	lastSeen   time.Time
	conns      int
}

// Service keeps the conversations of the web surface in memory. A session
// lives until its last live connection goes away or it sits idle past the
// sweep TTL. Nothing survives a restart.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*entry
	sender   transport.Sender
	profile  assistant.Profile
	now      func() time.Time
}

// NewService returns a registry whose sessions send through sender and greet
// with the profile's welcome text.
func NewService(sender transport.Sender, profile assistant.Profile) *Service {
	return &Service{
		sessions: make(map[string]*entry),
		sender:   sender,
		profile:  profile,
		now:      time.Now,
	}
}

// CreateSession provisions a session holding a fresh conversation.
func (s *Service) CreateSession(_ context.Context) (Session, error) {
	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
	}
	controller := NewController(chat.NewConversation(s.profile.Welcome), s.sender, s.profile.ErrorText)

	s.mu.Lock()
	s.sessions[session.ID] = &entry{session: session, controller: controller, lastSeen: now}
	s.mu.Unlock()

	metrics.SessionOpened()
	logger.DebugCF("chat", "session created", map[string]any{"session": session.ID})
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

// Controller returns the controller owning the session's conversation and
// marks the session as active.
func (s *Service) Controller(_ context.Context, sessionID string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now()
	return e.controller, nil
}

// Attach registers a live connection on the session and returns its
// controller. Every successful Attach must be paired with Detach.
func (s *Service) Attach(_ context.Context, sessionID string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.conns++
	e.lastSeen = s.now()
	return e.controller, nil
}

// Detach releases a connection taken with Attach. The session closes when its
// last connection leaves.
func (s *Service) Detach(sessionID string) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.conns--
	e.lastSeen = s.now()
	last := e.conns <= 0
	s.mu.Unlock()

	if last {
		s.CloseSession(sessionID)
	}
}

// CloseSession drops the session. Unknown ids are ignored.
func (s *Service) CloseSession(sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		metrics.SessionClosed()
		logger.DebugCF("chat", "session closed", map[string]any{"session": sessionID})
	}
}

// Sweep closes sessions without live connections that have not been touched
// for idle. Sessions waiting on a reply are kept. It returns the number
// closed.
func (s *Service) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var stale []string
	for id, e := range s.sessions {
		if e.conns > 0 || e.lastSeen.After(cutoff) || e.controller.IsLoading() {
			continue
		}
		stale = append(stale, id)
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.CloseSession(id)
	}
	return len(stale)
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				logger.InfoCF("chat", "idle sessions closed", map[string]any{"count": n, "remaining": s.Len()})
			}
		}
	}
}

// Len reports how many sessions are held.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Profile returns the copy sessions are created with.
func (s *Service) Profile() assistant.Profile {
	return s.profile
}
