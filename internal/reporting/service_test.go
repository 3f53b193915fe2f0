package reporting

import (
	"context"
	"testing"
	"time"

	"voicera-console/internal/calls"
)

func f64(v float64) *float64 { return &v }
func yes() *bool { b := true; return &b }

func fixture() []calls.Meeting {
	return []calls.Meeting{
		{MeetingID: "m1", OrgID: "o1", AgentType: "sales", CreatedAt: "2025-01-10T09:00:00", Duration: f64(120)},
		{MeetingID: "m2", OrgID: "o1", AgentType: "support", CreatedAt: "2025-01-11T09:00:00",
			StartTimeUTC: "2025-01-11T09:00:00", EndTimeUTC: "2025-01-11T09:03:00"},
		{MeetingID: "m3", OrgID: "o1", AgentType: "support", CreatedAt: "2025-01-12T09:00:00", CallBusy: yes()},
		{MeetingID: "m4", OrgID: "o1", AgentType: "support", CreatedAt: "2025-01-31T23:00:00", EndTimeUTC: "2025-01-31T23:00:00"},
		{MeetingID: "m5", OrgID: "o2", AgentType: "sales", CreatedAt: "2025-01-10T09:00:00", Duration: f64(600)},
	}
}

func TestReporting_OrgIsolation(t *testing.T) {
	svc := NewService(NewMemoryRepo(fixture()...))
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	out, err := svc.Summary(context.Background(), Request{OrgID: "o1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.CallsAttempted != 4 {
		t.Fatalf("expected 4 calls, got %d", out.CallsAttempted)
	}
	if out.CalculatedAt != "2023-11-14T22:13:20Z" {
		t.Fatalf("unexpected calculated_at %q", out.CalculatedAt)
	}
}

func TestReporting_ConnectedAndDurations(t *testing.T) {
	out := Summarize(Request{OrgID: "o1"}, fixture()[:4])
	if out.CallsConnected != 3 {
		t.Fatalf("expected 3 connected, got %d", out.CallsConnected)
	}
	// m1 2min, m2 3min, m4 has no measurable duration.
	if out.TotalMinutesConnected != 5 {
		t.Fatalf("expected 5 minutes, got %v", out.TotalMinutesConnected)
	}
	if out.AverageCallDuration != 2.5 {
		t.Fatalf("expected 2.5 average, got %v", out.AverageCallDuration)
	}
	if out.MostUsedAgent != "support" || out.MostUsedAgentCount != 3 {
		t.Fatalf("unexpected most used %q/%d", out.MostUsedAgent, out.MostUsedAgentCount)
	}
	if len(out.AgentBreakdown) != 2 || out.AgentBreakdown[0].AgentType != "support" {
		t.Fatalf("unexpected breakdown %+v", out.AgentBreakdown)
	}
}

func TestReporting_DateAndAgentFilters(t *testing.T) {
	out := Summarize(Request{OrgID: "o1", StartDate: "2025-01-11", EndDate: "2025-01-31"}, fixture())
	if out.CallsAttempted != 3 {
		t.Fatalf("expected end date to include the whole day, got %d", out.CallsAttempted)
	}
	out = Summarize(Request{OrgID: "o1", AgentType: "sales"}, fixture())
	if out.CallsAttempted != 1 || out.MostUsedAgent != "sales" {
		t.Fatalf("unexpected agent filter result %+v", out)
	}
}

func TestReporting_EmptyInput(t *testing.T) {
	out := Summarize(Request{OrgID: "o1"}, nil)
	if out.CallsAttempted != 0 || out.AverageCallDuration != 0 || out.MostUsedAgent != "" {
		t.Fatalf("unexpected summary %+v", out)
	}
	if out.AgentBreakdown == nil {
		t.Fatalf("breakdown should be an empty list")
	}
	if _, err := NewService(NewMemoryRepo()).Summary(context.Background(), Request{}); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
