package utils

import (
	"context"
	"testing"
	"time"
)

func TestGuardScriptCompiles(t *testing.T) {
	if guardReleaseScript == nil {
		t.Fatalf("expected release script to be initialized")
	}
}

func TestGuardRejectsBadArguments(t *testing.T) {
	ctx := context.Background()
	if _, err := AcquireGuard(ctx, nil, "k", "o", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if err := ReleaseGuard(ctx, nil, "k", "o"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	c := RedisConfig{MinIdleConns: -1}.withDefaults()
	if c.PoolSize != 10 || c.MinIdleConns != 0 || c.PingTimeout != 2*time.Second {
		t.Fatalf("unexpected defaults %+v", c)
	}
}
