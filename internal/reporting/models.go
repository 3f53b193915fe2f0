package reporting

import (
	"strings"
	"time"

	"voicera-console/internal/calls"
)

// Request scopes a call analytics summary. OrgID is required; the other
// fields narrow the call set when set.
type Request struct {
	OrgID       string `json:"org_id"`
	AgentType   string `json:"agent_type,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

type AgentCount struct {
	AgentType string `json:"agent_type"`
	CallCount int    `json:"call_count"`
}

// Summary matches the backend analytics payload. Durations are in minutes,
// rounded to two decimals.
type Summary struct {
	OrgID string `json:"org_id"`

	CallsAttempted        int     `json:"calls_attempted"`
	CallsConnected        int     `json:"calls_connected"`
	AverageCallDuration   float64 `json:"average_call_duration"`
	TotalMinutesConnected float64 `json:"total_minutes_connected"`

	MostUsedAgent      string       `json:"most_used_agent,omitempty"`
	MostUsedAgentCount int          `json:"most_used_agent_count"`
	AgentBreakdown     []AgentCount `json:"agent_breakdown"`

	CalculatedAt string `json:"calculated_at"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

// dateBound parses a filter date. A bare date is widened to the start or the
// end of that day.
func dateBound(s string, end bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if !strings.Contains(s, "T") {
		if end {
			s += "T23:59:59"
		} else {
			s += "T00:00:00"
		}
	}
	return calls.ParseTime(s)
}

// matches applies the request's agent, number and created_at filters.
func (r Request) matches(m calls.Meeting) bool {
	if r.OrgID != "" && m.OrgID != "" && m.OrgID != r.OrgID {
		return false
	}
	if r.AgentType != "" && m.AgentType != r.AgentType {
		return false
	}
	if r.PhoneNumber != "" && m.FromNumber != r.PhoneNumber && m.ToNumber != r.PhoneNumber {
		return false
	}
	from, hasFrom := dateBound(r.StartDate, false)
	to, hasTo := dateBound(r.EndDate, true)
	if !hasFrom && !hasTo {
		return true
	}
	created, ok := calls.ParseTime(m.CreatedAt)
	if !ok {
		return false
	}
	if hasFrom && created.Before(from) {
		return false
	}
	if hasTo && created.After(to) {
		return false
	}
	return true
}
