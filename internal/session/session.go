package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session: not found")

// Session is what the console knows about a signed-in user. The backend
// token never leaves the server; the browser only holds the session id.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	OrgID     string    `json:"org_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// Handle binds one Session to its store for the lifetime of a request. It is
// what the backend client reads credentials from and clears on 401.
type Handle struct {
	store Store

	mu      sync.RWMutex
	s       Session
	cleared bool
}

func NewHandle(store Store, s Session) *Handle {
	return &Handle{store: store, s: s}
}

func (h *Handle) Session() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s
}

func (h *Handle) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s.Token
}

func (h *Handle) OrgID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s.OrgID
}

func (h *Handle) Email() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.s.Email
}

// Cleared reports whether Clear has run.
func (h *Handle) Cleared() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cleared
}

// Clear drops token, org and email and deletes the stored session.
func (h *Handle) Clear(ctx context.Context) error {
	h.mu.Lock()
	id := h.s.ID
	h.s = Session{ID: id}
	h.cleared = true
	h.mu.Unlock()

	if h.store == nil || id == "" {
		return nil
	}
	err := h.store.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
