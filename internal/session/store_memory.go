package session

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process with expiry. Sessions are lost on
// restart.
type MemoryStore struct {
	c *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &MemoryStore{c: cache.New(ttl, ttl/2)}
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	if s.ID == "" {
		return errors.New("session: id is required")
	}
	m.c.Set(s.ID, s, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	v, ok := m.c.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	s, ok := v.(Session)
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.c.Delete(id)
	return nil
}

// Len is the number of live sessions.
func (m *MemoryStore) Len() int { return m.c.ItemCount() }
