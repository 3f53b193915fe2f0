package agentops

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"voicera-console/pkg/utils"
)

// Guard rejects a second submit for the same key while the first is in
// flight. Acquire returns ErrBusy when the key is held.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// MemoryGuard holds keys in process memory. Keys expire after ttl so a
// crashed request cannot block the key forever.
type MemoryGuard struct {
	c   *gocache.Cache
	ttl time.Duration
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{c: gocache.New(ttl, 2*ttl), ttl: ttl}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	if err := g.c.Add(key, struct{}{}, g.ttl); err != nil {
		return nil, ErrBusy
	}
	return func() { g.c.Delete(key) }, nil
}

// RedisGuard shares keys across console instances.
type RedisGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl, prefix: "console:guard:"}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	k := g.prefix + key
	ok, err := utils.AcquireGuard(ctx, g.rdb, k, owner, g.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}
	release := func() {
		// Release even when the request context is already done.
		_ = utils.ReleaseGuard(context.WithoutCancel(ctx), g.rdb, k, owner)
	}
	return release, nil
}
