package utils

import (
	"testing"
	"time"
)

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	got := PostgresDSN("db", 5432, "console", "p@ss/word", "voicera", "")
	want := "postgres://console:p%40ss%2Fword@db:5432/voicera?sslmode=disable"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPostgresPoolDefaults(t *testing.T) {
	p := PostgresPoolConfig{}.withDefaults()
	if p.MaxOpenConns != 10 || p.MaxIdleConns != 5 || p.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", p)
	}
	p = PostgresPoolConfig{MaxOpenConns: 3}.withDefaults()
	if p.MaxOpenConns != 3 {
		t.Fatalf("explicit value overwritten")
	}
}
