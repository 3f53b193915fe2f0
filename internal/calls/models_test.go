package calls

import (
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestDurationPrefersStoredValue(t *testing.T) {
	m := Meeting{Duration: ptr(90.0), StartTimeUTC: "2025-01-01T10:00:00Z", EndTimeUTC: "2025-01-01T10:10:00Z"}
	d, ok := m.DurationSeconds()
	if !ok || d != 90 {
		t.Fatalf("expected stored 90s, got %v %v", d, ok)
	}
}

func TestDurationFallsBackToTimestamps(t *testing.T) {
	m := Meeting{StartTimeUTC: "2025-01-01T10:00:00", EndTimeUTC: "2025-01-01T10:01:05.500000"}
	d, ok := m.DurationSeconds()
	if !ok {
		t.Fatalf("expected duration")
	}
	if d != 65.5 {
		t.Fatalf("expected 65.5, got %v", d)
	}
	if got := m.Row().Duration; got != "1:06" {
		t.Fatalf("unexpected formatted duration %q", got)
	}
}

func TestStatusDerivation(t *testing.T) {
	cases := []struct {
		name string
		m    Meeting
		want Status
	}{
		{"busy wins", Meeting{CallBusy: ptr(true), EndTimeUTC: "2025-01-01T10:00:00Z"}, StatusBusy},
		{"ended", Meeting{StartTimeUTC: "2025-01-01T10:00:00Z", EndTimeUTC: "2025-01-01T10:02:00Z"}, StatusCompleted},
		{"duration only", Meeting{Duration: ptr(3.0)}, StatusCompleted},
		{"started", Meeting{StartTimeUTC: "2025-01-01T10:00:00Z"}, StatusInProgress},
		{"nothing", Meeting{}, StatusUnknown},
	}
	for _, tc := range cases {
		if got := tc.m.Status(); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDirectionNumbers(t *testing.T) {
	out := Meeting{Inbound: ptr(false), FromNumber: "+911111111111", ToNumber: "+922222222222"}
	if out.AgentNumber() != "+911111111111" || out.CallerNumber() != "+922222222222" {
		t.Fatalf("unexpected outbound numbers")
	}
	in := Meeting{Inbound: ptr(true), FromNumber: "+911111111111", ToNumber: "+922222222222"}
	if in.AgentNumber() != "+922222222222" {
		t.Fatalf("unexpected inbound agent number")
	}
	if (Meeting{}).Direction() != DirectionUnknown {
		t.Fatalf("expected unknown direction")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(3725); got != "1:02:05" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDuration(-4); got != "0:00" {
		t.Fatalf("got %q", got)
	}
}

func TestWhenFallsBackToCreatedAt(t *testing.T) {
	m := Meeting{CreatedAt: "2025-02-03T04:05:06+05:30"}
	want := time.Date(2025, 2, 2, 22, 35, 6, 0, time.UTC)
	if !m.When().Equal(want) {
		t.Fatalf("expected %v, got %v", want, m.When())
	}
}
