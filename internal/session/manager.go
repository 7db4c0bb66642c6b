package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"docqa/internal/repositories"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session ID
const CookieName = "docqa_session"

// Manager hands out live sessions and persists them through a repository.
// Live sessions stay in memory while in use so in-flight flags are shared by
// concurrent requests; the repository lets a session outlive a restart.
type Manager struct {
	repo   repositories.SessionRepository
	client Client
	ttl    time.Duration
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewManager creates a session manager
func NewManager(repo repositories.SessionRepository, client Client, ttl time.Duration, logger *log.Logger) *Manager {
	return &Manager{
		repo:     repo,
		client:   client,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id, loading it from the repository if it is
// not live. An unknown id yields a fresh session with that id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.touch(m.now())
		return s, nil
	}
	m.mu.Unlock()

	s := newSession(id, m.client)

	snap, err := m.repo.Get(ctx, id)
	switch {
	case err == nil:
		s.restore(snap)
	case errors.Is(err, repositories.ErrSessionNotFound):
	default:
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have loaded it meanwhile
	if live, ok := m.sessions[id]; ok {
		live.touch(m.now())
		return live, nil
	}
	s.touch(m.now())
	m.sessions[id] = s
	return s, nil
}

// New creates a session with a fresh random ID
func (m *Manager) New() *Session {
	s := newSession(uuid.New().String(), m.client)
	s.touch(m.now())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// FromRequest resolves the session named by the request cookie, creating one
// and setting the cookie when there is none or it is not a valid ID.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return m.Get(r.Context(), cookie.Value)
		}
	}

	s := m.New()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	})
	return s, nil
}

// Save persists the session's snapshot
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := m.repo.Save(ctx, s.Snapshot()); err != nil {
		m.logger.Printf("Failed to save session %s: %v", s.ID, err)
		return err
	}
	return nil
}

// Live returns the number of sessions held in memory
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle drops live sessions idle for longer than maxIdle. Their snapshots
// stay in the repository until it expires them.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince(now) > maxIdle && !s.busy() {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions every interval until ctx is done
func (m *Manager) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.EvictIdle(maxIdle); n > 0 {
				m.logger.Printf("Evicted %d idle sessions", n)
			}
			if cleaner, ok := m.repo.(interface{ Cleanup(context.Context) int }); ok {
				cleaner.Cleanup(ctx)
			}
		}
	}
}
