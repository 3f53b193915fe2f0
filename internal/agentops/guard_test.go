package agentops

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicera-console/pkg/utils"
)

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "k")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrBusy)

	_, err = g.Acquire(ctx, "other")
	assert.NoError(t, err)

	release()
	_, err = g.Acquire(ctx, "k")
	assert.NoError(t, err)
}

func TestRedisGuard(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer rdb.Close()

	g := NewRedisGuard(rdb, time.Minute)
	key := "test-" + time.Now().Format(time.RFC3339Nano)

	release, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	_, err = g.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrBusy)
	release()
	release2, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	release2()
}
