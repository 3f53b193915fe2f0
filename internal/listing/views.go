package listing

import (
	"time"

	"voicera-console/internal/backend"
	"voicera-console/internal/calls"
)

// History is the call-history table: filters agent, phone number (the
// agent-side number), status and direction.
var History = Schema[calls.Row]{
	Fields: map[string]func(calls.Row) string{
		"agent_type":   func(r calls.Row) string { return r.AgentType },
		"phone_number": func(r calls.Row) string { return r.AgentNumber },
		"status":       func(r calls.Row) string { return string(r.Status) },
		"direction":    func(r calls.Row) string { return string(r.Direction) },
		"from_number":  func(r calls.Row) string { return r.FromNumber },
		"to_number":    func(r calls.Row) string { return r.ToNumber },
		"meeting_id":   func(r calls.Row) string { return r.MeetingID },
	},
	Sorts: map[string]func(a, b calls.Row) int{
		"started_at": ByTime(func(r calls.Row) time.Time { return r.StartedAt }),
		"duration":   ByNumber(func(r calls.Row) float64 { return r.DurationSeconds }),
		"agent_type": ByString(func(r calls.Row) string { return r.AgentType }),
		"status":     ByString(func(r calls.Row) string { return string(r.Status) }),
	},
	Search: []string{"meeting_id", "from_number", "to_number", "agent_type"},
	Time:   func(r calls.Row) time.Time { return r.StartedAt },
}

// HistoryOptions are the choices offered by the history filter bar.
type HistoryOptions struct {
	Agents       []string `json:"agents"`
	PhoneNumbers []string `json:"phone_numbers"`
	Statuses     []string `json:"statuses"`
	Directions   []string `json:"directions"`
}

func HistoryFilterOptions(rows []calls.Row) HistoryOptions {
	return HistoryOptions{
		Agents:       UniqueValues(rows, History.Fields["agent_type"]),
		PhoneNumbers: UniqueValues(rows, History.Fields["phone_number"]),
		Statuses:     UniqueValues(rows, History.Fields["status"]),
		Directions:   UniqueValues(rows, History.Fields["direction"]),
	}
}

var Agents = Schema[backend.Agent]{
	Fields: map[string]func(backend.Agent) string{
		"agent_type":         func(a backend.Agent) string { return a.AgentType },
		"agent_category":     func(a backend.Agent) string { return a.AgentCategory },
		"telephony_provider": func(a backend.Agent) string { return a.TelephonyProvider },
		"phone_number":       func(a backend.Agent) string { return a.PhoneNumber },
	},
	Sorts: map[string]func(a, b backend.Agent) int{
		"agent_type": ByString(func(a backend.Agent) string { return a.AgentType }),
		"updated_at": ByString(func(a backend.Agent) string { return a.UpdatedAt }),
	},
	Search: []string{"agent_type", "agent_category", "phone_number"},
}

var PhoneNumbers = Schema[backend.PhoneNumber]{
	Fields: map[string]func(backend.PhoneNumber) string{
		"phone_number": func(p backend.PhoneNumber) string { return p.PhoneNumber },
		"provider":     func(p backend.PhoneNumber) string { return p.Provider },
		"agent_type":   func(p backend.PhoneNumber) string { return p.AgentType },
		"state": func(p backend.PhoneNumber) string {
			if p.Attached() {
				return "attached"
			}
			return "available"
		},
	},
	Sorts: map[string]func(a, b backend.PhoneNumber) int{
		"phone_number": ByString(func(p backend.PhoneNumber) string { return p.PhoneNumber }),
		"updated_at":   ByString(func(p backend.PhoneNumber) string { return p.UpdatedAt }),
	},
	Search: []string{"phone_number", "agent_type"},
}

var Campaigns = Schema[backend.Campaign]{
	Fields: map[string]func(backend.Campaign) string{
		"campaign_name": func(c backend.Campaign) string { return c.CampaignName },
		"agent_type":    func(c backend.Campaign) string { return c.AgentType },
		"status":        func(c backend.Campaign) string { return c.Status },
	},
	Sorts: map[string]func(a, b backend.Campaign) int{
		"campaign_name": ByString(func(c backend.Campaign) string { return c.CampaignName }),
	},
	Search: []string{"campaign_name", "agent_type"},
}

var Audiences = Schema[backend.Audience]{
	Fields: map[string]func(backend.Audience) string{
		"audience_name": func(a backend.Audience) string { return a.AudienceName },
		"phone_number":  func(a backend.Audience) string { return a.PhoneNumber },
	},
	Sorts: map[string]func(a, b backend.Audience) int{
		"audience_name": ByString(func(a backend.Audience) string { return a.AudienceName }),
	},
	Search: []string{"audience_name", "phone_number"},
}

var Members = Schema[backend.Member]{
	Fields: map[string]func(backend.Member) string{
		"email": func(m backend.Member) string { return m.Email },
		"name":  func(m backend.Member) string { return m.Name },
	},
	Sorts: map[string]func(a, b backend.Member) int{
		"name":       ByString(func(m backend.Member) string { return m.Name }),
		"email":      ByString(func(m backend.Member) string { return m.Email }),
		"created_at": ByString(func(m backend.Member) string { return m.CreatedAt }),
	},
	Search: []string{"email", "name"},
}
