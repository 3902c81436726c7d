package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Session is the per-request view of a visitor session.
type Session struct {
	id   string
	data Data
}

// Key is the id of a session that has been stored, or "" for a fresh visitor.
func (s *Session) Key() string {
	if s == nil {
		return ""
	}
	return s.id
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(level, text string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Level: level, Text: text})
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []Flash {
	out := s.data.Flashes
	s.data.Flashes = nil
	return out
}

type ctxKey struct{}

// FromContext returns the request session, or nil outside Manager.Middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Manager binds sessions to requests via a cookie.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	log        *slog.Logger
}

// NewManager creates a manager over store.
func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		log:        slog.Default().With("component", "session"),
	}
}

// Middleware loads the visitor's session into the request context. An
// unknown or expired cookie yields a fresh, unsaved session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &Session{}
		if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
			data, err := m.store.Get(r.Context(), c.Value)
			switch {
			case err == nil:
				s.id = c.Value
				s.data = *data
			case errors.Is(err, ErrNotFound):
			default:
				m.log.Warn("session load failed", "error", err)
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
	})
}

// Save persists s, assigning an id and setting the cookie on first save.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if err := m.store.Set(ctx, s.id, &s.data, m.ttl); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Flash adds a message to the request session and saves it. Errors are
// logged; a lost flash never fails the request.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, level, text string) {
	s := FromContext(r.Context())
	if s == nil {
		return
	}
	s.AddFlash(level, text)
	if err := m.Save(r.Context(), w, s); err != nil {
		m.log.Warn("session save failed", "error", err)
	}
}

// TakeFlashes pops queued messages and persists the emptied session.
func (m *Manager) TakeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := FromContext(r.Context())
	if s == nil {
		return nil
	}
	flashes := s.PopFlashes()
	if len(flashes) > 0 {
		if err := m.Save(r.Context(), w, s); err != nil {
			m.log.Warn("session save failed", "error", err)
		}
	}
	return flashes
}
